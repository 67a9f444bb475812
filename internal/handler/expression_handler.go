package handler

import (
	"net/http"

	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/service"
)

// ExpressionHandler handles expression-of-interest intake.
type ExpressionHandler struct {
	svc        service.ExpressionService
	production bool
}

// NewExpressionHandler creates an ExpressionHandler with the given service.
func NewExpressionHandler(svc service.ExpressionService, production bool) *ExpressionHandler {
	return &ExpressionHandler{svc: svc, production: production}
}

// Submit handles POST /api/expressions-of-interest.
func (h *ExpressionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var e model.ExpressionOfInterest
	if !decodeJSON(w, r, &e) {
		return
	}

	if err := h.svc.Submit(r.Context(), &e); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": e.ID})
}

// List handles GET /api/expressions-of-interest.
func (h *ExpressionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20, 100)

	records, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, h.production)
		return
	}
	if records == nil {
		records = []*model.ExpressionOfInterest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expressions": records})
}

// SendNotification handles POST /api/expressions-of-interest/send-notification,
// the admin trigger that re-sends the notification mail for a submitted
// expression.
func (h *ExpressionHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var e model.ExpressionOfInterest
	if !decodeJSON(w, r, &e) {
		return
	}

	if err := h.svc.Notify(r.Context(), &e); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
