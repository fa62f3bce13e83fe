package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledVisit() *Visit {
	return &Visit{
		ID:        "v-1",
		LeadID:    1,
		StaffID:   2,
		VisitDate: time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC),
		TimeSlot:  "10:30 AM - 11:30 AM",
		Status:    VisitStatusScheduled,
	}
}

func TestVisitMarkDone(t *testing.T) {
	v := scheduledVisit()

	require.NoError(t, v.MarkDone("25.5901,85.1502"))
	assert.Equal(t, VisitStatusDone, v.Status)
	assert.Equal(t, "25.5901,85.1502", v.GPSProof)
	assert.True(t, v.Occupies())

	err := v.MarkDone("25.0,85.0")
	assert.ErrorIs(t, err, ErrVisitNotScheduled)
	assert.Equal(t, "25.5901,85.1502", v.GPSProof)

	assert.ErrorIs(t, v.Cancel(), ErrVisitNotScheduled)
	assert.Equal(t, VisitStatusDone, v.Status)
}

func TestVisitMarkDoneRequiresProof(t *testing.T) {
	v := scheduledVisit()

	assert.ErrorIs(t, v.MarkDone(""), ErrMissingProof)
	assert.Equal(t, VisitStatusScheduled, v.Status)
}

func TestVisitCancel(t *testing.T) {
	v := scheduledVisit()

	require.NoError(t, v.Cancel())
	assert.Equal(t, VisitStatusCancelled, v.Status)
	assert.False(t, v.Occupies())

	assert.ErrorIs(t, v.Cancel(), ErrVisitNotScheduled)
	assert.ErrorIs(t, v.MarkDone("1,1"), ErrVisitNotScheduled)
}

func TestVisitIsValid(t *testing.T) {
	assert.True(t, scheduledVisit().IsValid())

	v := scheduledVisit()
	v.Status = "Pending"
	assert.False(t, v.IsValid())

	v = scheduledVisit()
	v.TimeSlot = ""
	assert.False(t, v.IsValid())
}
