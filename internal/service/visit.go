package service

import (
	"errors"
	"field-sales-bot/internal/metrics"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"field-sales-bot/internal/scheduling"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// DistanceCheck is the result of the distance gate for one lead.
type DistanceCheck struct {
	LeadID      uint    `json:"lead_id"`
	DistanceKm  float64 `json:"distance_km"`
	MaxRadiusKm float64 `json:"max_radius_km"`
	InRange     bool    `json:"in_range"`
	MapsLink    string  `json:"maps_link"`
}

// AvailabilityDay is a DayStatus with the leave reason filtered for the viewer.
type AvailabilityDay struct {
	Date   time.Time           `json:"date"`
	Status scheduling.DayState `json:"status"`
	Booked int                 `json:"booked"`
	Reason string              `json:"reason,omitempty"`
}

// Bookable reports whether the day can be selected.
func (d AvailabilityDay) Bookable() bool {
	return d.Status != scheduling.DayBlocked
}

// BookRequest identifies a visit to book.
type BookRequest struct {
	LeadID  uint      `json:"lead_id"`
	StaffID uint      `json:"staff_id"`
	Date    time.Time `json:"date"`
	Slot    string    `json:"slot"`
}

type VisitService struct {
	visits      repository.VisitRepository
	leads       repository.LeadRepository
	leaves      repository.LeaveRepository
	users       repository.UserRepository
	scheduler   *scheduling.Scheduler
	horizonDays int
	logger      *logrus.Logger
	now         func() time.Time
}

func NewVisitService(
	visits repository.VisitRepository,
	leads repository.LeadRepository,
	leaves repository.LeaveRepository,
	users repository.UserRepository,
	scheduler *scheduling.Scheduler,
	horizonDays int,
	logger *logrus.Logger,
) *VisitService {
	if horizonDays <= 0 {
		horizonDays = scheduling.DefaultHorizonDays
	}
	return &VisitService{
		visits:      visits,
		leads:       leads,
		leaves:      leaves,
		users:       users,
		scheduler:   scheduler,
		horizonDays: horizonDays,
		logger:      logger,
		now:         time.Now,
	}
}

// HorizonDays is the default length of the availability grid.
func (s *VisitService) HorizonDays() int {
	return s.horizonDays
}

// Today is the first day of the availability grid.
func (s *VisitService) Today() time.Time {
	return models.DateOnly(s.now())
}

// CheckDistance runs the distance gate for a lead.
func (s *VisitService) CheckDistance(leadID uint) (*DistanceCheck, error) {
	lead, err := s.getLead(leadID)
	if err != nil {
		return nil, err
	}
	if !lead.Location().IsValid() {
		return nil, &scheduling.RejectionError{Reason: scheduling.ErrInvalidLocation}
	}

	distance, inRange := s.scheduler.DistanceFromOffice(lead.Location())
	return &DistanceCheck{
		LeadID:      lead.ID,
		DistanceKm:  distance,
		MaxRadiusKm: s.scheduler.Rules().MaxRadiusKm,
		InRange:     inRange,
		MapsLink:    lead.MapsLink(),
	}, nil
}

// Availability plans days consecutive days from start for staffID. Leave
// reasons are filtered for viewer.
func (s *VisitService) Availability(viewer *models.User, staffID uint, start time.Time, days int) ([]AvailabilityDay, error) {
	if _, err := s.getStaff(staffID); err != nil {
		return nil, err
	}
	if days <= 0 {
		return []AvailabilityDay{}, nil
	}
	if days > scheduling.MaxHorizonDays {
		return nil, fmt.Errorf("%w: at most %d days can be planned", ErrInvalidInput, scheduling.MaxHorizonDays)
	}

	from := models.DateOnly(start)
	to := from.AddDate(0, 0, days-1)

	leaves, err := s.leaves.GetByRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave: %w", err)
	}
	visits, err := s.visits.GetByStaffAndRange(staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	plan := scheduling.PlanHorizon(staffID, from, days, leaves, visits)
	result := make([]AvailabilityDay, 0, len(plan))
	for _, day := range plan {
		entry := AvailabilityDay{Date: day.Date, Status: day.Status, Booked: day.Booked}
		switch {
		case day.Leave != nil:
			entry.Reason = scheduling.LeaveReasonFor(day.Leave, viewer).Text
		case day.Booked >= scheduling.DailyVisitCap:
			entry.Reason = "Fully booked"
		}
		result = append(result, entry)
	}
	return result, nil
}

// Slots returns the slot grid for staffID on date.
func (s *VisitService) Slots(staffID uint, date time.Time) ([]scheduling.SlotStatus, error) {
	if _, err := s.getStaff(staffID); err != nil {
		return nil, err
	}

	day := models.DateOnly(date)
	visits, err := s.visits.GetByStaffAndRange(staffID, day, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}
	return s.scheduler.SlotsFor(staffID, day, visits), nil
}

// Book validates and stores a visit and marks the lead Visit Scheduled.
// The slot check and both writes run in one storage transaction against
// fresh data.
func (s *VisitService) Book(req BookRequest) (*scheduling.Booking, error) {
	if _, err := s.getStaff(req.StaffID); err != nil {
		return nil, err
	}
	lead, err := s.getLead(req.LeadID)
	if err != nil {
		return nil, err
	}

	date := models.DateOnly(req.Date)
	leaves, err := s.leaves.GetByDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave: %w", err)
	}

	var booking *scheduling.Booking
	_, err = s.visits.CreateIfFree(req.StaffID, date, func(dayVisits []models.Visit) (*repository.Reservation, error) {
		b, err := s.scheduler.RequestVisit(scheduling.BookingRequest{
			Lead:    lead,
			StaffID: req.StaffID,
			Date:    date,
			Slot:    req.Slot,
		}, leaves, dayVisits)
		if err != nil {
			return nil, err
		}
		booking = b
		return &repository.Reservation{
			Visit:       b.Visit,
			LeadStatus:  b.LeadStatus,
			ContactedAt: s.now().UTC(),
		}, nil
	})
	if errors.Is(err, repository.ErrSlotConflict) {
		err = &scheduling.RejectionError{Reason: scheduling.ErrSlotTaken}
	}
	if errors.Is(err, repository.ErrLeadNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		if code := scheduling.RejectionCode(err); code != "" {
			metrics.RecordRejection(code)
			s.logger.WithFields(logrus.Fields{
				"lead_id":  req.LeadID,
				"staff_id": req.StaffID,
				"date":     date.Format(models.DateLayout),
				"slot":     req.Slot,
				"reason":   code,
			}).Info("Booking rejected")
			return nil, err
		}
		return nil, fmt.Errorf("failed to book visit: %w", err)
	}

	metrics.RecordBooking()
	return booking, nil
}

// ListVisits returns visits visible to viewer ordered by date and slot.
// Admins see every visit, staff only their own.
func (s *VisitService) ListVisits(viewer *models.User) ([]models.Visit, error) {
	if viewer == nil {
		return nil, ErrStaffNotFound
	}

	var (
		visits []models.Visit
		err    error
	)
	if viewer.IsAdmin() {
		visits, err = s.visits.GetAll()
	} else {
		visits, err = s.visits.GetByStaffID(viewer.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}

	s.sortVisits(visits)
	return visits, nil
}

// Get returns a visit the viewer is allowed to see.
func (s *VisitService) Get(viewer *models.User, visitID string) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}
	if !canActOn(viewer, visit) {
		return nil, ErrForbidden
	}
	return visit, nil
}

// MarkDone closes a visit with proof of presence. Only the assigned staff
// member or an admin may do it.
func (s *VisitService) MarkDone(actor *models.User, visitID, proof string) (*models.Visit, error) {
	return s.transition(actor, visitID, func(v *models.Visit) error {
		return v.MarkDone(proof)
	})
}

// Cancel releases a scheduled visit's slot. A lead left without any
// scheduled visit goes back to Call Later.
func (s *VisitService) Cancel(actor *models.User, visitID string) (*models.Visit, error) {
	visit, err := s.transition(actor, visitID, func(v *models.Visit) error {
		return v.Cancel()
	})
	if err != nil {
		return nil, err
	}

	if err := s.releaseLead(visit.LeadID); err != nil {
		s.logger.WithError(err).WithField("lead_id", visit.LeadID).Warn("Failed to return lead to the calling list")
	}
	return visit, nil
}

func (s *VisitService) releaseLead(leadID uint) error {
	lead, err := s.leads.GetByID(leadID)
	if err != nil {
		return err
	}
	if lead == nil || lead.Status != models.LeadStatusVisitScheduled {
		return nil
	}

	visits, err := s.visits.GetByLeadID(leadID)
	if err != nil {
		return err
	}
	for i := range visits {
		if visits[i].IsScheduled() {
			return nil
		}
	}

	return s.leads.UpdateStatus(leadID, models.LeadStatusCallLater, s.now().UTC())
}

func (s *VisitService) transition(actor *models.User, visitID string, apply func(*models.Visit) error) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}
	if !canActOn(actor, visit) {
		return nil, ErrForbidden
	}

	if err := apply(visit); err != nil {
		return nil, err
	}
	if err := s.visits.Update(visit); err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", err)
	}

	metrics.RecordTransition(visit.Status)
	s.logger.WithFields(logrus.Fields{
		"visit_id": visit.ID,
		"actor_id": actor.ID,
		"status":   visit.Status,
	}).Info("Visit updated")

	return visit, nil
}

// RecordDealOutcome moves the visited lead to Converted or Not Interested.
// The visit must be Done.
func (s *VisitService) RecordDealOutcome(actor *models.User, visitID string, confirmed bool) (string, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return "", err
	}
	if !canActOn(actor, visit) {
		return "", ErrForbidden
	}
	if visit.Status != models.VisitStatusDone {
		return "", ErrVisitNotDone
	}

	status := models.LeadStatusForDeal(confirmed)
	if err := s.leads.UpdateStatus(visit.LeadID, status, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return "", ErrLeadNotFound
		}
		return "", fmt.Errorf("failed to record deal outcome: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"visit_id": visit.ID,
		"lead_id":  visit.LeadID,
		"status":   status,
	}).Info("Deal outcome recorded")

	return status, nil
}

func (s *VisitService) getStaff(id uint) (*models.User, error) {
	staff, err := s.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

func (s *VisitService) getLead(id uint) (*models.Lead, error) {
	lead, err := s.leads.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

func (s *VisitService) getVisit(id string) (*models.Visit, error) {
	visit, err := s.visits.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	return visit, nil
}

func (s *VisitService) sortVisits(visits []models.Visit) {
	order := make(map[string]int, len(s.scheduler.Slots()))
	for i, slot := range s.scheduler.Slots() {
		order[slot] = i
	}
	sort.SliceStable(visits, func(i, j int) bool {
		if !models.SameDay(visits[i].VisitDate, visits[j].VisitDate) {
			return visits[i].VisitDate.Before(visits[j].VisitDate)
		}
		return order[visits[i].TimeSlot] < order[visits[j].TimeSlot]
	})
}

// CanBookFor reports whether actor may book visits for staffID: staff book
// for themselves, admins for anyone.
func CanBookFor(actor *models.User, staffID uint) bool {
	return actor != nil && (actor.ID == staffID || actor.IsAdmin())
}

func canActOn(actor *models.User, visit *models.Visit) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == visit.StaffID
}
