package scheduling

import (
	"field-sales-bot/internal/models"
	"time"
)

// Visibility tells a renderer whether a leave reason is shown as recorded.
type Visibility int

const (
	FullReason Visibility = iota
	MaskedReason
)

// MaskedLeaveText is shown instead of a personal leave reason the viewer may not see.
const MaskedLeaveText = "Unavailable: Busy"

// LeaveReason is the privacy-filtered description of an effective leave.
type LeaveReason struct {
	Visibility Visibility `json:"-"`
	Text       string     `json:"text"`
}

// Masked reports whether the real reason was withheld.
func (r LeaveReason) Masked() bool {
	return r.Visibility == MaskedReason
}

func (r LeaveReason) String() string {
	return r.Text
}

// EffectiveLeave returns the leave governing staffID on date, or nil.
// A Global record wins over a Personal one on the same day.
func EffectiveLeave(date time.Time, staffID uint, records []models.LeaveRecord) *models.LeaveRecord {
	var personal *models.LeaveRecord
	for i := range records {
		rec := &records[i]
		if !models.SameDay(rec.Date, date) {
			continue
		}
		if rec.IsGlobal() {
			return rec
		}
		if personal == nil && rec.Scope == models.LeaveScopePersonal && rec.AppliesTo(staffID) {
			personal = rec
		}
	}
	return personal
}

// LeaveReasonFor applies the leave privacy policy for viewer. Office-wide
// closures are public. A personal reason is visible only to admins and to
// the staff member on leave. A nil viewer sees the masked text.
func LeaveReasonFor(record *models.LeaveRecord, viewer *models.User) LeaveReason {
	if record.IsGlobal() {
		return LeaveReason{Visibility: FullReason, Text: "Office Closed: " + record.Reason}
	}
	if viewer != nil && (viewer.IsAdmin() || record.AppliesTo(viewer.ID)) {
		return LeaveReason{Visibility: FullReason, Text: "Unavailable: " + record.Reason}
	}
	return LeaveReason{Visibility: MaskedReason, Text: MaskedLeaveText}
}
