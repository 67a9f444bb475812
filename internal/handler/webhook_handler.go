package handler

import (
	"io"
	"net/http"

	"github.com/givebridge/backend/internal/service"
)

// webhookBodyLimit caps webhook payloads independently of the general
// body cap; gateway events are small.
const webhookBodyLimit = 1 << 20

// WebhookHandler receives signed gateway callbacks.
type WebhookHandler struct {
	svc        service.WebhookService
	production bool
}

// NewWebhookHandler creates a WebhookHandler with the given service.
func NewWebhookHandler(svc service.WebhookService, production bool) *WebhookHandler {
	return &WebhookHandler{svc: svc, production: production}
}

// Stripe handles POST /api/webhooks/stripe. The body is read raw and
// passed to verification byte-for-byte: re-serializing JSON could alter
// the content and invalidate the signature. A missing or bad signature
// is a 400 before any business logic runs.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing_signature"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "read_body_failed"})
		return
	}

	if err := h.svc.Process(r.Context(), payload, sigHeader); err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// Test handles POST /api/webhooks/test, a development-only synthetic
// trigger that feeds an unsigned event through the same dispatch path.
// Disabled in production.
func (h *WebhookHandler) Test(w http.ResponseWriter, r *http.Request) {
	if h.production {
		http.NotFound(w, r)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "read_body_failed"})
		return
	}

	if err := h.svc.Process(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
