package scheduling

import (
	"field-sales-bot/internal/models"
	"time"

	"github.com/google/uuid"
)

// DefaultSlots are the visit windows offered each day, in display order.
var DefaultSlots = []string{
	"10:30 AM - 11:30 AM",
	"12:00 PM - 01:00 PM",
	"01:30 PM - 03:00 PM",
}

// DefaultOffice is the office coordinate in Patna.
var DefaultOffice = models.Coordinate{Latitude: 25.5940, Longitude: 85.1375}

// DefaultMaxRadiusKm is the service radius around the office.
const DefaultMaxRadiusKm = 16.0

// Rules is the fixed configuration the scheduler applies to every request.
type Rules struct {
	Office      models.Coordinate
	MaxRadiusKm float64
	Slots       []string
}

// DefaultRules returns the office, radius and slots used in production.
func DefaultRules() Rules {
	slots := make([]string, len(DefaultSlots))
	copy(slots, DefaultSlots)
	return Rules{
		Office:      DefaultOffice,
		MaxRadiusKm: DefaultMaxRadiusKm,
		Slots:       slots,
	}
}

// SlotStatus is one row of the slot picker.
type SlotStatus struct {
	Slot  string `json:"slot"`
	Taken bool   `json:"taken"`
}

// BookingRequest is what a caller asks the scheduler to book.
type BookingRequest struct {
	Lead    *models.Lead
	StaffID uint
	Date    time.Time
	Slot    string
}

// Booking is an accepted request: the new visit plus the status the lead
// should move to. Updating the lead is the caller's job.
type Booking struct {
	Visit      *models.Visit
	DistanceKm float64
	LeadStatus string
}

// Scheduler applies Rules to caller-supplied snapshots.
type Scheduler struct {
	rules Rules
	newID func() string
}

// NewScheduler creates a scheduler. Visit ids come from uuid.NewString.
func NewScheduler(rules Rules) *Scheduler {
	if len(rules.Slots) == 0 {
		rules.Slots = DefaultRules().Slots
	}
	return &Scheduler{rules: rules, newID: uuid.NewString}
}

// Rules returns the scheduler configuration.
func (s *Scheduler) Rules() Rules {
	return s.rules
}

// Slots returns the configured visit windows.
func (s *Scheduler) Slots() []string {
	return s.rules.Slots
}

// HasSlot reports whether slot is one of the configured windows.
func (s *Scheduler) HasSlot(slot string) bool {
	for _, configured := range s.rules.Slots {
		if configured == slot {
			return true
		}
	}
	return false
}

// DistanceFromOffice returns the distance to loc and whether it is within
// the service radius.
func (s *Scheduler) DistanceFromOffice(loc models.Coordinate) (float64, bool) {
	distance := DistanceKm(s.rules.Office, loc)
	return distance, distance <= s.rules.MaxRadiusKm
}

// SlotsFor marks each configured slot as taken or free for staffID on date.
func (s *Scheduler) SlotsFor(staffID uint, date time.Time, visits []models.Visit) []SlotStatus {
	slots := make([]SlotStatus, 0, len(s.rules.Slots))
	for _, slot := range s.rules.Slots {
		slots = append(slots, SlotStatus{Slot: slot, Taken: slotTaken(staffID, date, slot, visits)})
	}
	return slots
}

// ValidateBooking checks a (staff, date, slot) request against the leave
// calendar and existing visits. Checks run in order and the first failure
// is returned as a *RejectionError; nil means the booking may proceed.
// Call it again at commit time: the snapshots may have changed since the
// caller last looked.
func (s *Scheduler) ValidateBooking(staffID uint, date time.Time, slot string, leaves []models.LeaveRecord, visits []models.Visit) error {
	if !s.HasSlot(slot) {
		return reject(ErrUnknownSlot)
	}
	if leave := EffectiveLeave(date, staffID, leaves); leave != nil {
		return &RejectionError{Reason: ErrLeaveUnavailable, Leave: leave}
	}
	if BookedCount(staffID, date, visits) >= DailyVisitCap {
		return reject(ErrCapacityExceeded)
	}
	if slotTaken(staffID, date, slot, visits) {
		return reject(ErrSlotTaken)
	}
	return nil
}

// RequestVisit runs the distance gate and, when the lead is in range, the
// booking validation. On success it returns a new Scheduled visit.
func (s *Scheduler) RequestVisit(req BookingRequest, leaves []models.LeaveRecord, visits []models.Visit) (*Booking, error) {
	if req.Lead == nil || !req.Lead.Location().IsValid() {
		return nil, reject(ErrInvalidLocation)
	}

	distance, inRange := s.DistanceFromOffice(req.Lead.Location())
	if !inRange {
		return nil, &RejectionError{Reason: ErrOutOfServiceArea, DistanceKm: distance}
	}

	date := models.DateOnly(req.Date)
	if err := s.ValidateBooking(req.StaffID, date, req.Slot, leaves, visits); err != nil {
		return nil, err
	}

	visit := &models.Visit{
		ID:        s.newID(),
		LeadID:    req.Lead.ID,
		StaffID:   req.StaffID,
		VisitDate: date,
		TimeSlot:  req.Slot,
		Status:    models.VisitStatusScheduled,
	}

	return &Booking{
		Visit:      visit,
		DistanceKm: distance,
		LeadStatus: models.LeadStatusVisitScheduled,
	}, nil
}

func slotTaken(staffID uint, date time.Time, slot string, visits []models.Visit) bool {
	for i := range visits {
		v := &visits[i]
		if v.StaffID == staffID && v.TimeSlot == slot && v.Occupies() && models.SameDay(v.VisitDate, date) {
			return true
		}
	}
	return false
}
