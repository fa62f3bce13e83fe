package api

import (
	"encoding/json"
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/internal/service"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// RejectionResponse explains a refused booking.
type RejectionResponse struct {
	Reason     string   `json:"reason"`
	Message    string   `json:"message"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Leave      string   `json:"leave,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeError maps service and engine errors to status codes. viewer decides
// how much of a leave reason a rejection may reveal.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, viewer *models.User) {
	var rejection *scheduling.RejectionError
	if errors.As(err, &rejection) {
		resp := RejectionResponse{
			Reason:  rejection.Code(),
			Message: rejection.Error(),
		}
		if errors.Is(rejection.Reason, scheduling.ErrOutOfServiceArea) {
			distance := rejection.DistanceKm
			resp.DistanceKm = &distance
		}
		if rejection.Leave != nil {
			resp.Leave = scheduling.LeaveReasonFor(rejection.Leave, viewer).Text
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	switch {
	case errors.Is(err, service.ErrLeadNotFound),
		errors.Is(err, service.ErrStaffNotFound),
		errors.Is(err, service.ErrVisitNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrVisitNotDone),
		errors.Is(err, models.ErrVisitNotScheduled):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, models.ErrMissingProof):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
