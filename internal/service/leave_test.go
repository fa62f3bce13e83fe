package service

import (
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/pkg/closures"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGlobalRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaves.AddGlobal(f.alice, day(1), "Holi")
	assert.ErrorIs(t, err, ErrForbidden)

	rec, err := f.leaves.AddGlobal(f.admin, day(1), "Holi")
	require.NoError(t, err)
	assert.True(t, rec.IsGlobal())
	assert.Nil(t, rec.StaffID)

	_, err = f.leaves.AddGlobal(f.admin, day(2), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddPersonal(t *testing.T) {
	f := newFixture(t)

	rec, err := f.leaves.AddPersonal(f.alice, day(3), "Wedding")
	require.NoError(t, err)
	require.NotNil(t, rec.StaffID)
	assert.Equal(t, f.alice.ID, *rec.StaffID)

	_, err = f.leaves.AddPersonalFor(f.alice, f.bob.ID, day(3), "Sick")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.leaves.AddPersonalFor(f.admin, 999, day(3), "Sick")
	assert.ErrorIs(t, err, ErrStaffNotFound)

	rec, err = f.leaves.AddPersonalFor(f.admin, f.bob.ID, day(4), "Sick")
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, *rec.StaffID)
}

func TestUpcomingFiltersReasons(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaves.AddPersonal(f.alice, day(2), "Doctor appointment")
	require.NoError(t, err)
	_, err = f.leaves.AddGlobal(f.admin, day(5), "Eid")
	require.NoError(t, err)
	_, err = f.leaves.AddGlobal(f.admin, day(30), "Outside the window")
	require.NoError(t, err)

	tests := []struct {
		name     string
		viewer   *models.User
		personal string
	}{
		{"holder", f.alice, "Unavailable: Doctor appointment"},
		{"admin", f.admin, "Unavailable: Doctor appointment"},
		{"colleague", f.bob, scheduling.MaskedLeaveText},
		{"anonymous", nil, scheduling.MaskedLeaveText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := f.leaves.Upcoming(tt.viewer, 14)
			require.NoError(t, err)
			require.Len(t, views, 2)

			assert.Equal(t, tt.personal, views[0].Reason.Text)
			assert.Equal(t, "Office Closed: Eid", views[1].Reason.Text)
			assert.False(t, views[1].Reason.Masked())
		})
	}

	views, err := f.leaves.Upcoming(f.admin, 0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestImportClosuresReplacesSpan(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaves.AddGlobal(f.admin, day(1), "Old entry")
	require.NoError(t, err)
	_, err = f.leaves.AddPersonal(f.bob, day(1), "Travel")
	require.NoError(t, err)

	n, err := f.leaves.ImportClosures([]closures.Closure{
		{Date: day(1), Reason: "Buddha Purnima"},
		{Date: day(2), Reason: "Buddha Purnima"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := f.leaveRepo.GetByRange(day(1), day(2))
	require.NoError(t, err)
	require.Len(t, records, 3)

	globals := 0
	for _, rec := range records {
		if rec.IsGlobal() {
			globals++
			assert.Equal(t, "Buddha Purnima", rec.Reason)
		}
	}
	assert.Equal(t, 2, globals)

	n, err = f.leaves.ImportClosures(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadClosuresFromFile(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "closures.json")
	data := `{"year": 2024, "months": [{"month": 6, "days": "10, 17+", "reason": "Eid"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	n, err := f.leaves.LoadClosures(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.leaves.LoadClosures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRemoveLeave(t *testing.T) {
	f := newFixture(t)

	holiday, err := f.leaves.AddGlobal(f.admin, day(1), "Holi")
	require.NoError(t, err)
	wedding, err := f.leaves.AddPersonal(f.alice, day(2), "Wedding")
	require.NoError(t, err)

	_, err = f.leaves.Remove(f.alice, holiday.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.leaves.Remove(f.bob, wedding.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.leaves.Remove(f.alice, 999)
	assert.ErrorIs(t, err, ErrLeaveNotFound)

	removed, err := f.leaves.Remove(f.alice, wedding.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wedding", removed.Reason)

	_, err = f.leaves.Remove(f.admin, holiday.ID)
	require.NoError(t, err)

	records, err := f.leaveRepo.GetByRange(day(0), day(5))
	require.NoError(t, err)
	assert.Empty(t, records)
}
