package scheduling

import (
	"field-sales-bot/internal/models"
	"time"
)

const (
	adminID = uint(1)
	staffA  = uint(2)
	staffB  = uint(3)
)

var (
	slot1 = DefaultSlots[0]
	slot2 = DefaultSlots[1]
	slot3 = DefaultSlots[2]
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func uintPtr(v uint) *uint {
	return &v
}

func globalLeave(date time.Time, reason string) models.LeaveRecord {
	return models.LeaveRecord{Date: date, Reason: reason, Scope: models.LeaveScopeGlobal}
}

func personalLeave(date time.Time, staffID uint, reason string) models.LeaveRecord {
	return models.LeaveRecord{Date: date, Reason: reason, Scope: models.LeaveScopePersonal, StaffID: uintPtr(staffID)}
}

func visit(staffID uint, date time.Time, slot, status string) models.Visit {
	return models.Visit{
		ID:        date.Format(models.DateLayout) + slot,
		LeadID:    10,
		StaffID:   staffID,
		VisitDate: date,
		TimeSlot:  slot,
		Status:    status,
	}
}
