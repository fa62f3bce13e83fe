package repository

import (
	"errors"
	"field-sales-bot/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)

func newVisit(id string, staffID uint, slot string) *models.Visit {
	return &models.Visit{
		ID:        id,
		LeadID:    1,
		StaffID:   staffID,
		VisitDate: testDay,
		TimeSlot:  slot,
		Status:    models.VisitStatusScheduled,
	}
}

// book inserts v without checking the day's other visits.
func book(t *testing.T, repo *GormVisitRepository, v *models.Visit) {
	t.Helper()
	_, err := repo.CreateIfFree(v.StaffID, v.VisitDate, func([]models.Visit) (*Reservation, error) {
		return &Reservation{Visit: v}, nil
	})
	require.NoError(t, err)
}

func TestVisitRepositoryCreateIfFree(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	book(t, repo, newVisit("a", 2, "slot-1"))

	var seen []models.Visit
	created, err := repo.CreateIfFree(2, testDay, func(dayVisits []models.Visit) (*Reservation, error) {
		seen = dayVisits
		return &Reservation{Visit: newVisit("b", 2, "slot-2")}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "b", created.ID)
	require.Len(t, seen, 1)
	assert.Equal(t, "a", seen[0].ID)

	visits, err := repo.GetByStaffAndRange(2, testDay, testDay)
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestVisitRepositoryCreateIfFreeAbort(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	refused := errors.New("refused")
	_, err = repo.CreateIfFree(2, testDay, func([]models.Visit) (*Reservation, error) {
		return nil, refused
	})
	assert.ErrorIs(t, err, refused)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVisitRepositoryCreateIfFreeMovesLead(t *testing.T) {
	db := openTestDB(t)
	leads, err := NewGormLeadRepository(db)
	require.NoError(t, err)
	repo, err := NewGormVisitRepository(db, nullLogger())
	require.NoError(t, err)

	lead := &models.Lead{BusinessName: "Gupta Offset", Latitude: 25.59, Longitude: 85.15, Status: models.LeadStatusNew}
	require.NoError(t, leads.Create(lead))

	contacted := time.Date(2024, 5, 26, 9, 0, 0, 0, time.UTC)
	v := newVisit("a", 2, "slot-1")
	v.LeadID = lead.ID
	_, err = repo.CreateIfFree(2, testDay, func([]models.Visit) (*Reservation, error) {
		return &Reservation{Visit: v, LeadStatus: models.LeadStatusVisitScheduled, ContactedAt: contacted}, nil
	})
	require.NoError(t, err)

	got, err := leads.GetByID(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusVisitScheduled, got.Status)
	assert.True(t, got.LastContact.Equal(contacted))
}

func TestVisitRepositoryCreateIfFreeMissingLeadRollsBack(t *testing.T) {
	db := openTestDB(t)
	_, err := NewGormLeadRepository(db)
	require.NoError(t, err)
	repo, err := NewGormVisitRepository(db, nullLogger())
	require.NoError(t, err)

	v := newVisit("a", 2, "slot-1")
	v.LeadID = 999
	_, err = repo.CreateIfFree(2, testDay, func([]models.Visit) (*Reservation, error) {
		return &Reservation{Visit: v, LeadStatus: models.LeadStatusVisitScheduled, ContactedAt: testDay}, nil
	})
	assert.ErrorIs(t, err, ErrLeadNotFound)

	got, err := repo.GetByID("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVisitRepositoryUniqueSlot(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	book(t, repo, newVisit("a", 2, "slot-1"))

	// A booking that skipped validation still cannot take the slot.
	_, err = repo.CreateIfFree(2, testDay, func([]models.Visit) (*Reservation, error) {
		return &Reservation{Visit: newVisit("b", 2, "slot-1")}, nil
	})
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Another staff member may hold the same slot.
	book(t, repo, newVisit("c", 3, "slot-1"))
}

func TestVisitRepositoryCancelledFreesSlot(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	v := newVisit("a", 2, "slot-1")
	book(t, repo, v)
	require.NoError(t, v.Cancel())
	require.NoError(t, repo.Update(v))

	book(t, repo, newVisit("b", 2, "slot-1"))

	got, err := repo.GetByID("a")
	require.NoError(t, err)
	assert.Equal(t, models.VisitStatusCancelled, got.Status)
}

func TestVisitRepositoryUpdateAndLookup(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	v := newVisit("a", 2, "slot-1")
	book(t, repo, v)
	require.NoError(t, v.MarkDone("25.59,85.15"))
	require.NoError(t, repo.Update(v))

	got, err := repo.GetByID("a")
	require.NoError(t, err)
	assert.Equal(t, models.VisitStatusDone, got.Status)
	assert.Equal(t, "25.59,85.15", got.GPSProof)
	assert.True(t, models.SameDay(testDay, got.VisitDate))

	missing, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repo.Update(newVisit("nope", 2, "slot-3")), ErrVisitNotFound)

	byLead, err := repo.GetByLeadID(1)
	require.NoError(t, err)
	assert.Len(t, byLead, 1)

	byStaff, err := repo.GetByStaffID(3)
	require.NoError(t, err)
	assert.Empty(t, byStaff)
}

func TestVisitRepositoryUpdateFromStaleCopy(t *testing.T) {
	repo, err := NewGormVisitRepository(openTestDB(t), nullLogger())
	require.NoError(t, err)

	book(t, repo, newVisit("a", 2, "slot-1"))

	stale, err := repo.GetByID("a")
	require.NoError(t, err)
	fresh, err := repo.GetByID("a")
	require.NoError(t, err)

	require.NoError(t, fresh.Cancel())
	require.NoError(t, repo.Update(fresh))

	require.NoError(t, stale.MarkDone("25.6,85.14"))
	assert.ErrorIs(t, repo.Update(stale), models.ErrVisitNotScheduled)

	got, err := repo.GetByID("a")
	require.NoError(t, err)
	assert.Equal(t, models.VisitStatusCancelled, got.Status)
	assert.Empty(t, got.GPSProof)
}
