package service

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ClientView is a converted lead as shown on the client list.
type ClientView struct {
	Lead             models.Lead `json:"lead"`
	DaysSinceContact int         `json:"days_since_contact"`
	Neglected        bool        `json:"neglected"`
	CallLink         string      `json:"call_link"`
	WhatsAppLink     string      `json:"whatsapp_link"`
	MapsLink         string      `json:"maps_link"`
}

type LeadService struct {
	repo         repository.LeadRepository
	neglectAfter time.Duration
	logger       *logrus.Logger
	now          func() time.Time
}

func NewLeadService(repo repository.LeadRepository, neglectAfter time.Duration, logger *logrus.Logger) *LeadService {
	if neglectAfter <= 0 {
		neglectAfter = models.DefaultNeglectAfter
	}
	return &LeadService{
		repo:         repo,
		neglectAfter: neglectAfter,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores a new lead. The status defaults to New and the contact
// clock starts now.
func (s *LeadService) Create(lead *models.Lead) error {
	lead.BusinessName = strings.TrimSpace(lead.BusinessName)
	if lead.BusinessName == "" {
		return fmt.Errorf("%w: business name is required", ErrInvalidInput)
	}
	if !lead.Location().IsValid() {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if !models.IsValidLeadStatus(lead.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, lead.Status)
	}
	lead.LastContact = s.now().UTC()

	if err := s.repo.Create(lead); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lead_id":  lead.ID,
		"business": lead.BusinessName,
	}).Info("Lead created")

	return nil
}

func (s *LeadService) Get(id uint) (*models.Lead, error) {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// ListCallable returns the leads on the calling list.
func (s *LeadService) ListCallable() ([]models.Lead, error) {
	return s.repo.GetByStatuses(models.CallableStatuses)
}

// UpdateStatus moves a lead to status and stamps the contact time.
func (s *LeadService) UpdateStatus(id uint, status string) error {
	if !models.IsValidLeadStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateStatus(id, status, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return ErrLeadNotFound
		}
		return fmt.Errorf("failed to update lead status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lead_id": id,
		"status":  status,
	}).Info("Lead status updated")

	return nil
}

// NewWorkOrder records a repeat order from a client.
func (s *LeadService) NewWorkOrder(id uint) error {
	return s.UpdateStatus(id, models.LeadStatusConverted)
}

// Demote sends a client back to the calling list.
func (s *LeadService) Demote(id uint) error {
	return s.UpdateStatus(id, models.LeadStatusOldLead)
}

// ListClients returns converted leads, neglected clients first and then the
// longest without contact.
func (s *LeadService) ListClients() ([]ClientView, error) {
	leads, err := s.repo.GetByStatuses([]string{models.LeadStatusConverted})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	now := s.now()
	views := make([]ClientView, 0, len(leads))
	for i := range leads {
		lead := leads[i]
		views = append(views, ClientView{
			Lead:             lead,
			DaysSinceContact: lead.DaysSinceContact(now),
			Neglected:        lead.IsNeglected(now, s.neglectAfter),
			CallLink:         lead.CallLink(),
			WhatsAppLink:     lead.WhatsAppLink(),
			MapsLink:         lead.MapsLink(),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Neglected != views[j].Neglected {
			return views[i].Neglected
		}
		return views[i].Lead.LastContact.Before(views[j].Lead.LastContact)
	})

	return views, nil
}
