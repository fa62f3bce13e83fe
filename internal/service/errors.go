package service

import "errors"

var (
	ErrStaffNotFound = errors.New("staff member not found")
	ErrLeadNotFound  = errors.New("lead not found")
	ErrVisitNotFound = errors.New("visit not found")
	ErrLeaveNotFound = errors.New("leave record not found")
	ErrForbidden     = errors.New("action not permitted")
	ErrVisitNotDone  = errors.New("deal outcome can only be recorded for a completed visit")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidInput  = errors.New("invalid input")
)
