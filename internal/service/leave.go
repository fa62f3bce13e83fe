package service

import (
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/pkg/closures"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LeaveView is a leave record with its reason filtered for one viewer.
type LeaveView struct {
	ID      uint                   `json:"id"`
	Date    time.Time              `json:"date"`
	Scope   models.LeaveScope      `json:"scope"`
	StaffID *uint                  `json:"staff_id,omitempty"`
	Reason  scheduling.LeaveReason `json:"reason"`
}

type LeaveService struct {
	repo   repository.LeaveRepository
	users  repository.UserRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewLeaveService(repo repository.LeaveRepository, users repository.UserRepository, logger *logrus.Logger) *LeaveService {
	return &LeaveService{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// AddGlobal closes the office on date. Admin only.
func (s *LeaveService) AddGlobal(actor *models.User, date time.Time, reason string) (*models.LeaveRecord, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.create(&models.LeaveRecord{
		Date:   date,
		Reason: strings.TrimSpace(reason),
		Scope:  models.LeaveScopeGlobal,
	})
}

// AddPersonal records leave for the acting staff member.
func (s *LeaveService) AddPersonal(actor *models.User, date time.Time, reason string) (*models.LeaveRecord, error) {
	if actor == nil {
		return nil, ErrStaffNotFound
	}
	staffID := actor.ID
	return s.create(&models.LeaveRecord{
		Date:    date,
		Reason:  strings.TrimSpace(reason),
		Scope:   models.LeaveScopePersonal,
		StaffID: &staffID,
	})
}

// AddPersonalFor records leave on behalf of another staff member. Admin only.
func (s *LeaveService) AddPersonalFor(actor *models.User, staffID uint, date time.Time, reason string) (*models.LeaveRecord, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	staff, err := s.users.GetByID(staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}

	return s.create(&models.LeaveRecord{
		Date:    date,
		Reason:  strings.TrimSpace(reason),
		Scope:   models.LeaveScopePersonal,
		StaffID: &staff.ID,
	})
}

func (s *LeaveService) create(record *models.LeaveRecord) (*models.LeaveRecord, error) {
	if record.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to save leave: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"leave_id": record.ID,
		"date":     record.Date.Format(models.DateLayout),
		"scope":    record.Scope,
	}).Info("Leave recorded")

	return record, nil
}

// Remove deletes a leave record. Admins may remove any record, staff only
// their own personal leave.
func (s *LeaveService) Remove(actor *models.User, id uint) (*models.LeaveRecord, error) {
	if actor == nil {
		return nil, ErrStaffNotFound
	}

	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	if record == nil {
		return nil, ErrLeaveNotFound
	}
	if !actor.IsAdmin() && (record.IsGlobal() || !record.AppliesTo(actor.ID)) {
		return nil, ErrForbidden
	}

	if err := s.repo.Delete(record.ID); err != nil {
		return nil, fmt.Errorf("failed to delete leave: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"leave_id": record.ID,
		"actor_id": actor.ID,
		"date":     record.Date.Format(models.DateLayout),
	}).Info("Leave removed")

	return record, nil
}

// LoadClosures imports office closures from a JSON calendar file. Global
// records already stored inside the file's date span are replaced.
func (s *LeaveService) LoadClosures(path string) (int, error) {
	days, err := closures.ParseFile(path)
	if err != nil {
		return 0, err
	}
	return s.ImportClosures(days)
}

func (s *LeaveService) ImportClosures(days []closures.Closure) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	from, to := closures.Span(days)
	records := make([]models.LeaveRecord, 0, len(days))
	for _, day := range days {
		records = append(records, models.LeaveRecord{
			Date:   day.Date,
			Reason: day.Reason,
			Scope:  models.LeaveScopeGlobal,
		})
	}

	if err := s.repo.ReplaceGlobalRange(from, to, records); err != nil {
		return 0, fmt.Errorf("failed to save closures: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"count": len(records),
		"from":  from.Format(models.DateLayout),
		"to":    to.Format(models.DateLayout),
	}).Info("Office closures imported")

	return len(records), nil
}

// Upcoming lists leave in the next days starting today, with reasons
// filtered for viewer.
func (s *LeaveService) Upcoming(viewer *models.User, days int) ([]LeaveView, error) {
	if days <= 0 {
		return []LeaveView{}, nil
	}

	from := models.DateOnly(s.now())
	to := from.AddDate(0, 0, days-1)

	records, err := s.repo.GetByRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave: %w", err)
	}

	views := make([]LeaveView, 0, len(records))
	for i := range records {
		rec := &records[i]
		views = append(views, LeaveView{
			ID:      rec.ID,
			Date:    rec.Date,
			Scope:   rec.Scope,
			StaffID: rec.StaffID,
			Reason:  scheduling.LeaveReasonFor(rec, viewer),
		})
	}
	return views, nil
}
