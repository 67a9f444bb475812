package handler

import (
	"net/http"
	"time"

	"github.com/givebridge/backend/internal/mailer"
	"github.com/givebridge/backend/internal/model"
)

// DevHandler exposes development-only synthetic triggers. Every route
// 404s in production.
type DevHandler struct {
	mail       mailer.Mailer
	production bool
}

// NewDevHandler creates a DevHandler.
func NewDevHandler(mail mailer.Mailer, production bool) *DevHandler {
	return &DevHandler{mail: mail, production: production}
}

type testEmailRequest struct {
	To string `json:"to"`
}

// TestEmail handles POST /api/donations/test-email: sends a synthetic
// donation confirmation so mail rendering and Resend connectivity can
// be checked end to end without a payment.
func (h *DevHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	if h.production {
		http.NotFound(w, r)
		return
	}

	var req testEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "to_required"})
		return
	}

	d := &model.Donation{
		PaymentIntentID: "pi_test_000000000000",
		ProjectID:       "general",
		DonorName:       "Test Donor",
		DonorEmail:      req.To,
		Amount:          5000,
		Currency:        "usd",
		Status:          model.DonationStatusSucceeded,
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.mail.SendDonationConfirmation(r.Context(), d); err != nil {
		writeError(w, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
