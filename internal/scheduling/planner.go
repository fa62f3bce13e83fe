package scheduling

import (
	"field-sales-bot/internal/models"
	"time"
)

// DailyVisitCap is the most visits one staff member may hold on a single day.
const DailyVisitCap = 3

// DefaultHorizonDays is the length of the availability grid shown to callers.
const DefaultHorizonDays = 14

// MaxHorizonDays caps how far ahead a single grid may reach.
const MaxHorizonDays = 366

// DayState classifies a calendar day for one staff member.
type DayState string

const (
	DayOpen    DayState = "open"
	DayPartial DayState = "partial"
	DayBlocked DayState = "blocked"
)

// DayStatus is one cell of the availability grid.
type DayStatus struct {
	Date   time.Time           `json:"date"`
	Status DayState            `json:"status"`
	Leave  *models.LeaveRecord `json:"leave,omitempty"`
	Booked int                 `json:"booked"`
}

// Bookable reports whether the day can be selected.
func (d DayStatus) Bookable() bool {
	return d.Status != DayBlocked
}

// PlanHorizon classifies horizonDays consecutive days starting at start for
// staffID. A day is blocked by an effective leave or a full day, partial when
// some visits exist, open otherwise. horizonDays is capped at MaxHorizonDays.
func PlanHorizon(staffID uint, start time.Time, horizonDays int, leaves []models.LeaveRecord, visits []models.Visit) []DayStatus {
	if horizonDays <= 0 {
		return []DayStatus{}
	}
	if horizonDays > MaxHorizonDays {
		horizonDays = MaxHorizonDays
	}

	start = models.DateOnly(start)
	days := make([]DayStatus, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		d := start.AddDate(0, 0, i)
		leave := EffectiveLeave(d, staffID, leaves)
		booked := BookedCount(staffID, d, visits)

		status := DayOpen
		switch {
		case leave != nil || booked >= DailyVisitCap:
			status = DayBlocked
		case booked > 0:
			status = DayPartial
		}

		days = append(days, DayStatus{Date: d, Status: status, Leave: leave, Booked: booked})
	}
	return days
}

// BookedCount counts the non-cancelled visits staffID holds on date.
func BookedCount(staffID uint, date time.Time, visits []models.Visit) int {
	count := 0
	for i := range visits {
		v := &visits[i]
		if v.StaffID == staffID && v.Occupies() && models.SameDay(v.VisitDate, date) {
			count++
		}
	}
	return count
}
