package api

import (
	"encoding/json"
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/internal/service"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// staffHeader carries the id of the staff member making the request.
const staffHeader = "X-Staff-ID"

var errNoActor = errors.New("missing " + staffHeader + " header")

type HealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

type CreateVisitRequest struct {
	LeadID  uint   `json:"lead_id"`
	StaffID uint   `json:"staff_id"`
	Date    string `json:"date"`
	Slot    string `json:"slot"`
}

type CreateVisitResponse struct {
	Visit      *models.Visit `json:"visit"`
	DistanceKm float64       `json:"distance_km"`
	LeadStatus string        `json:"lead_status"`
}

type DoneRequest struct {
	Proof string `json:"proof"`
}

type OutcomeRequest struct {
	Confirmed bool `json:"confirmed"`
}

type OutcomeResponse struct {
	VisitID    string `json:"visit_id"`
	LeadStatus string `json:"lead_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	status := "healthy"

	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
			status = "degraded"
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	leadID, err := uintParam(r, "leadID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	check, err := s.visits.CheckDistance(leadID)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	staffID, err := uintParam(r, "staffID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	start := s.visits.Today()
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = models.ParseDay(v); err != nil {
			writeMessage(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
	}

	days := s.visits.HorizonDays()
	if v := r.URL.Query().Get("days"); v != "" {
		if days, err = strconv.Atoi(v); err != nil || days > scheduling.MaxHorizonDays {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("days must be a number up to %d", scheduling.MaxHorizonDays))
			return
		}
	}

	viewer, err := s.optionalActor(r)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	grid, err := s.visits.Availability(viewer, staffID, start, days)
	if err != nil {
		s.writeError(w, r, err, viewer)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	staffID, err := uintParam(r, "staffID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := models.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := s.visits.Slots(staffID, date)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleListVisits(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	visits, err := s.visits.ListVisits(actor)
	if err != nil {
		s.writeError(w, r, err, actor)
		return
	}
	writeJSON(w, http.StatusOK, visits)
}

func (s *Server) handleCreateVisit(w http.ResponseWriter, r *http.Request) {
	var req CreateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.LeadID == 0 || req.StaffID == 0 || req.Slot == "" {
		writeMessage(w, http.StatusBadRequest, "lead_id, staff_id, date and slot are required")
		return
	}
	date, err := models.ParseDay(req.Date)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}
	if !service.CanBookFor(actor, req.StaffID) {
		s.writeError(w, r, service.ErrForbidden, actor)
		return
	}

	booking, err := s.visits.Book(service.BookRequest{
		LeadID:  req.LeadID,
		StaffID: req.StaffID,
		Date:    date,
		Slot:    req.Slot,
	})
	if err != nil {
		s.writeError(w, r, err, actor)
		return
	}

	writeJSON(w, http.StatusCreated, CreateVisitResponse{
		Visit:      booking.Visit,
		DistanceKm: booking.DistanceKm,
		LeadStatus: booking.LeadStatus,
	})
}

func (s *Server) handleVisitDone(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req DoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	visit, err := s.visits.MarkDone(actor, chi.URLParam(r, "visitID"), req.Proof)
	if err != nil {
		s.writeError(w, r, err, actor)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (s *Server) handleVisitCancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	visit, err := s.visits.Cancel(actor, chi.URLParam(r, "visitID"))
	if err != nil {
		s.writeError(w, r, err, actor)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (s *Server) handleVisitOutcome(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	visitID := chi.URLParam(r, "visitID")
	status, err := s.visits.RecordDealOutcome(actor, visitID, req.Confirmed)
	if err != nil {
		s.writeError(w, r, err, actor)
		return
	}
	writeJSON(w, http.StatusOK, OutcomeResponse{VisitID: visitID, LeadStatus: status})
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.leads.ListClients()
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// optionalActor resolves the staff header when present.
func (s *Server) optionalActor(r *http.Request) (*models.User, error) {
	raw := r.Header.Get(staffHeader)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s header", service.ErrInvalidInput, staffHeader)
	}
	return s.users.GetByID(uint(id))
}

func (s *Server) requireActor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	actor, err := s.optionalActor(r)
	if err != nil {
		s.writeError(w, r, err, nil)
		return nil, false
	}
	if actor == nil {
		writeMessage(w, http.StatusUnauthorized, errNoActor.Error())
		return nil, false
	}
	return actor, true
}

func uintParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}
