package models

import (
	"fmt"
	"net/url"
	"time"
)

// Lead statuses.
const (
	LeadStatusNew            = "New"
	LeadStatusCallLater      = "Call Later"
	LeadStatusNotInterested  = "Not Interested"
	LeadStatusOldLead        = "Old Lead"
	LeadStatusVisitScheduled = "Visit Scheduled"
	LeadStatusConverted      = "Converted"
)

// DefaultNeglectAfter is how long a converted client may go without contact
// before being flagged.
const DefaultNeglectAfter = 10 * 24 * time.Hour

// LeadStatuses lists every status a lead may hold.
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusCallLater,
	LeadStatusNotInterested,
	LeadStatusOldLead,
	LeadStatusVisitScheduled,
	LeadStatusConverted,
}

// CallableStatuses are the statuses shown on the calling list.
var CallableStatuses = []string{
	LeadStatusNew,
	LeadStatusCallLater,
	LeadStatusOldLead,
}

// Lead is a prospect business, and after conversion a client.
type Lead struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BusinessName string    `gorm:"not null" json:"business_name"`
	OwnerName    string    `json:"owner_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lng"`
	Status       string    `gorm:"type:varchar(20);not null;default:'New';index" json:"status"`
	LastContact  time.Time `json:"last_contact"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// Location returns the lead's coordinate.
func (l *Lead) Location() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// IsValidLeadStatus reports whether status is one of LeadStatuses.
func IsValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// LeadStatusForDeal maps the post-visit deal outcome to a lead status.
func LeadStatusForDeal(confirmed bool) string {
	if confirmed {
		return LeadStatusConverted
	}
	return LeadStatusNotInterested
}

// DaysSinceContact returns whole days elapsed since the last contact.
func (l *Lead) DaysSinceContact(now time.Time) int {
	return int(now.Sub(l.LastContact).Hours() / 24)
}

// IsNeglected reports whether a converted client has gone strictly longer
// than threshold without contact.
func (l *Lead) IsNeglected(now time.Time, threshold time.Duration) bool {
	if l.Status != LeadStatusConverted {
		return false
	}
	return now.Sub(l.LastContact) > threshold
}

// CallLink returns a tel: deep link.
func (l *Lead) CallLink() string {
	return "tel:" + l.Phone
}

// WhatsAppLink returns a wa.me deep link with a greeting.
func (l *Lead) WhatsAppLink() string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", l.Phone, url.QueryEscape("Hello"))
}

// MapsLink returns a Google Maps link to the lead's coordinate.
func (l *Lead) MapsLink() string {
	return fmt.Sprintf("https://maps.google.com/?q=%g,%g", l.Latitude, l.Longitude)
}
