package models

import (
	"errors"
	"fmt"
	"time"
)

// Visit statuses. Done and Cancelled are terminal.
const (
	VisitStatusScheduled = "Scheduled"
	VisitStatusDone      = "Done" // carries GPSProof
	VisitStatusCancelled = "Cancelled"
)

var (
	ErrVisitNotScheduled = errors.New("visit is no longer scheduled")
	ErrMissingProof      = errors.New("proof of presence is required")
)

// Visit is a booked in-person meeting between a staff member and a lead.
// Visits are never deleted, only moved to a terminal status.
type Visit struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LeadID    uint      `gorm:"not null;index" json:"lead_id"`
	StaffID   uint      `gorm:"not null;index:idx_visits_staff_slot,unique,where:status <> 'Cancelled'" json:"staff_id"`
	VisitDate time.Time `gorm:"type:date;not null;index:idx_visits_staff_slot,unique,where:status <> 'Cancelled'" json:"visit_date"`
	TimeSlot  string    `gorm:"type:varchar(40);not null;index:idx_visits_staff_slot,unique,where:status <> 'Cancelled'" json:"time_slot"`
	Status    string    `gorm:"type:varchar(20);not null;default:'Scheduled'" json:"status"`
	GPSProof  string    `json:"gps_proof,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Visit) TableName() string {
	return "visits"
}

// Occupies reports whether the visit holds its slot and counts toward the
// daily cap. Done visits keep occupying their day.
func (v *Visit) Occupies() bool {
	return v.Status != VisitStatusCancelled
}

// IsScheduled reports whether the visit can still transition.
func (v *Visit) IsScheduled() bool {
	return v.Status == VisitStatusScheduled
}

// MarkDone closes the visit with a proof-of-presence location string.
func (v *Visit) MarkDone(proof string) error {
	if !v.IsScheduled() {
		return fmt.Errorf("%w: status is %s", ErrVisitNotScheduled, v.Status)
	}
	if proof == "" {
		return ErrMissingProof
	}
	v.Status = VisitStatusDone
	v.GPSProof = proof
	return nil
}

// Cancel releases the slot. Only scheduled visits can be cancelled.
func (v *Visit) Cancel() error {
	if !v.IsScheduled() {
		return fmt.Errorf("%w: status is %s", ErrVisitNotScheduled, v.Status)
	}
	v.Status = VisitStatusCancelled
	return nil
}

// IsValid checks the record before it is written.
func (v *Visit) IsValid() bool {
	if v.ID == "" || v.LeadID == 0 || v.StaffID == 0 {
		return false
	}
	if v.VisitDate.IsZero() || v.TimeSlot == "" {
		return false
	}
	switch v.Status {
	case VisitStatusScheduled, VisitStatusDone, VisitStatusCancelled:
		return true
	}
	return false
}
