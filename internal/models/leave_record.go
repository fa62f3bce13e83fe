package models

import (
	"errors"
	"time"
)

type LeaveScope string

const (
	LeaveScopeGlobal   LeaveScope = "Global"
	LeaveScopePersonal LeaveScope = "Personal"
)

var (
	ErrLeaveMissingStaff    = errors.New("personal leave requires a staff member")
	ErrLeaveUnexpectedStaff = errors.New("global leave cannot name a staff member")
	ErrLeaveInvalidScope    = errors.New("unknown leave scope")
	ErrLeaveMissingDate     = errors.New("leave date is required")
)

// LeaveRecord marks a calendar day as unavailable, either for the whole
// office (Global) or for one staff member (Personal).
type LeaveRecord struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Date      time.Time  `gorm:"type:date;not null;index" json:"date"`
	Reason    string     `gorm:"type:text" json:"reason"`
	Scope     LeaveScope `gorm:"type:varchar(20);not null" json:"scope"`
	StaffID   *uint      `gorm:"index" json:"staff_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (LeaveRecord) TableName() string {
	return "leave_records"
}

// IsGlobal reports whether the record closes the office for everyone.
func (l *LeaveRecord) IsGlobal() bool {
	return l.Scope == LeaveScopeGlobal
}

// AppliesTo reports whether the record blocks the given staff member.
func (l *LeaveRecord) AppliesTo(staffID uint) bool {
	if l.IsGlobal() {
		return true
	}
	return l.StaffID != nil && *l.StaffID == staffID
}

// Validate enforces the scope/staff pairing.
func (l *LeaveRecord) Validate() error {
	if l.Date.IsZero() {
		return ErrLeaveMissingDate
	}
	switch l.Scope {
	case LeaveScopeGlobal:
		if l.StaffID != nil {
			return ErrLeaveUnexpectedStaff
		}
	case LeaveScopePersonal:
		if l.StaffID == nil {
			return ErrLeaveMissingStaff
		}
	default:
		return ErrLeaveInvalidScope
	}
	return nil
}
