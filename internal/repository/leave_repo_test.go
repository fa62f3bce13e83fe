package repository

import (
	"field-sales-bot/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveRepositoryRange(t *testing.T) {
	repo, err := NewGormLeaveRepository(openTestDB(t))
	require.NoError(t, err)

	staffID := uint(7)
	ist := time.FixedZone("IST", 5*3600+1800)
	records := []models.LeaveRecord{
		{Date: time.Date(2024, 5, 25, 9, 0, 0, 0, ist), Reason: "Diwali", Scope: models.LeaveScopeGlobal},
		{Date: time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC), Reason: "Wedding", Scope: models.LeaveScopePersonal, StaffID: &staffID},
		{Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Reason: "Holi", Scope: models.LeaveScopeGlobal},
	}
	for i := range records {
		require.NoError(t, repo.Create(&records[i]))
	}

	got, err := repo.GetByRange(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Diwali", got[0].Reason)
	assert.True(t, models.SameDay(got[0].Date, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, got[1].StaffID)
	assert.Equal(t, staffID, *got[1].StaffID)

	onDay, err := repo.GetByDate(time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, "Holi", onDay[0].Reason)
}

func TestLeaveRepositoryGetAndDelete(t *testing.T) {
	repo, err := NewGormLeaveRepository(openTestDB(t))
	require.NoError(t, err)

	staffID := uint(4)
	rec := &models.LeaveRecord{Date: time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC), Reason: "Exam", Scope: models.LeaveScopePersonal, StaffID: &staffID}
	require.NoError(t, repo.Create(rec))

	got, err := repo.GetByID(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Exam", got.Reason)

	require.NoError(t, repo.Delete(rec.ID))

	got, err = repo.GetByID(rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLeaveRepositoryRejectsInvalid(t *testing.T) {
	repo, err := NewGormLeaveRepository(openTestDB(t))
	require.NoError(t, err)

	err = repo.Create(&models.LeaveRecord{Date: time.Now(), Scope: models.LeaveScopePersonal})
	assert.ErrorIs(t, err, models.ErrLeaveMissingStaff)
}

func TestLeaveRepositoryReplaceGlobalRange(t *testing.T) {
	repo, err := NewGormLeaveRepository(openTestDB(t))
	require.NoError(t, err)

	staffID := uint(3)
	may := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&models.LeaveRecord{Date: may, Reason: "Diwali", Scope: models.LeaveScopeGlobal}))
	require.NoError(t, repo.Create(&models.LeaveRecord{Date: may, Reason: "Exam", Scope: models.LeaveScopePersonal, StaffID: &staffID}))

	err = repo.ReplaceGlobalRange(may.AddDate(0, 0, -1), may.AddDate(0, 0, 1), []models.LeaveRecord{
		{Date: may.AddDate(0, 0, 1), Reason: "Chhath", Scope: models.LeaveScopeGlobal},
	})
	require.NoError(t, err)

	left, err := repo.GetByRange(may.AddDate(0, 0, -1), may.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "Exam", left[0].Reason)
	assert.Equal(t, "Chhath", left[1].Reason)
}

func TestLeaveRepositoryReplaceGlobalRangeKeepsOldOnFailure(t *testing.T) {
	repo, err := NewGormLeaveRepository(openTestDB(t))
	require.NoError(t, err)

	may := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&models.LeaveRecord{Date: may, Reason: "Diwali", Scope: models.LeaveScopeGlobal}))

	err = repo.ReplaceGlobalRange(may, may, []models.LeaveRecord{
		{Date: may, Reason: "Broken", Scope: models.LeaveScopePersonal},
	})
	assert.ErrorIs(t, err, models.ErrLeaveMissingStaff)

	left, err := repo.GetByDate(may)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Diwali", left[0].Reason)
}
