package handler

import (
	"net/http"

	"github.com/givebridge/backend/internal/service"
)

// NewsletterHandler handles newsletter subscription endpoints.
type NewsletterHandler struct {
	svc        service.NewsletterService
	production bool
}

// NewNewsletterHandler creates a NewsletterHandler with the given service.
func NewNewsletterHandler(svc service.NewsletterService, production bool) *NewsletterHandler {
	return &NewsletterHandler{svc: svc, production: production}
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe handles POST /api/newsletter/subscribe. Subscribing an
// address already on the list succeeds (idempotent).
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "email": sub.Email})
}

// Unsubscribe handles POST /api/newsletter/unsubscribe.
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Unsubscribe(r.Context(), req.Email); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
