package scheduling

import (
	"errors"
	"field-sales-bot/internal/models"
	"fmt"
)

// Booking rejections. They are expected business outcomes; callers match
// them with errors.Is and read details through *RejectionError.
var (
	ErrOutOfServiceArea = errors.New("lead is outside the service area")
	ErrLeaveUnavailable = errors.New("staff member is on leave")
	ErrCapacityExceeded = errors.New("staff member is fully booked for the day")
	ErrSlotTaken        = errors.New("time slot is already taken")
	ErrUnknownSlot      = errors.New("unknown time slot")
	ErrInvalidLocation  = errors.New("lead location is missing or invalid")
)

// RejectionError carries the reason a booking was refused plus the data a
// caller needs to explain it.
type RejectionError struct {
	Reason     error
	DistanceKm float64             // set for ErrOutOfServiceArea
	Leave      *models.LeaveRecord // set for ErrLeaveUnavailable
}

func (e *RejectionError) Error() string {
	if errors.Is(e.Reason, ErrOutOfServiceArea) {
		return fmt.Sprintf("%s (%.1f km)", e.Reason, e.DistanceKm)
	}
	return e.Reason.Error()
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

// Code returns a stable machine-readable name for the rejection.
func (e *RejectionError) Code() string {
	return RejectionCode(e.Reason)
}

// RejectionCode maps a rejection sentinel to its wire name, or "" when err
// is not a rejection.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrOutOfServiceArea):
		return "out_of_service_area"
	case errors.Is(err, ErrLeaveUnavailable):
		return "leave_unavailable"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrUnknownSlot):
		return "unknown_slot"
	case errors.Is(err, ErrInvalidLocation):
		return "invalid_location"
	}
	return ""
}

func reject(reason error) *RejectionError {
	return &RejectionError{Reason: reason}
}
