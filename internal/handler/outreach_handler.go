package handler

import (
	"net/http"

	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/service"
)

// OutreachHandler handles volunteer and enrollment form intake.
type OutreachHandler struct {
	svc        service.OutreachService
	production bool
}

// NewOutreachHandler creates an OutreachHandler with the given service.
func NewOutreachHandler(svc service.OutreachService, production bool) *OutreachHandler {
	return &OutreachHandler{svc: svc, production: production}
}

// Volunteer handles POST /api/volunteers.
func (h *OutreachHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	var app model.VolunteerApplication
	if !decodeJSON(w, r, &app) {
		return
	}

	if err := h.svc.SubmitVolunteer(r.Context(), &app); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Enroll handles POST /api/enrollments.
func (h *OutreachHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req model.EnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.SubmitEnrollment(r.Context(), &req); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
