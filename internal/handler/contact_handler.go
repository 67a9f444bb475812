package handler

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/service"
	"github.com/givebridge/backend/internal/validate"
)

const maxContactMessageLength = 5000

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	svc        service.ContactService
	production bool
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(svc service.ContactService, production bool) *ContactHandler {
	return &ContactHandler{svc: svc, production: production}
}

// contactRequest is the expected JSON body for POST /api/contact.
type contactRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit handles POST /api/contact.
// email and message are required; name and subject are optional.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validate.Email(req.Email) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email_invalid"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "message_required"})
		return
	}
	if utf8.RuneCountInString(req.Message) > maxContactMessageLength {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "message_too_long"})
		return
	}

	msg := &model.ContactMessage{
		Email:   req.Email,
		Name:    req.Name,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.svc.Submit(r.Context(), msg); err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": msg.ID})
}

// List handles GET /api/admin/contacts.
// Supports query params: limit (max 100), offset.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20, 100)

	messages, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, h.production)
		return
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// pagination reads limit/offset query params with bounds.
func pagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxLimit {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
