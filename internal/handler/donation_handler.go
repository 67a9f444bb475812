package handler

import (
	"net/http"

	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/service"
)

// DonationHandler handles the payment-intent lifecycle endpoints.
type DonationHandler struct {
	svc        service.DonationService
	production bool
}

// NewDonationHandler creates a DonationHandler with the given service.
func NewDonationHandler(svc service.DonationService, production bool) *DonationHandler {
	return &DonationHandler{svc: svc, production: production}
}

// CreatePaymentIntent handles POST /api/donations/create-payment-intent.
func (h *DonationHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req model.DonationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"clientSecret":    result.ClientSecret,
		"paymentIntentId": result.PaymentIntentID,
	})
}

// confirmRequest is the expected body for POST /api/donations/confirm-payment.
// expectedAmount (minor units) is optional; when present it is checked
// against the gateway's record, never trusted.
type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethodID string `json:"paymentMethodId"`
	ExpectedAmount  int64  `json:"expectedAmount,omitempty"`
}

// ConfirmPayment handles POST /api/donations/confirm-payment.
func (h *DonationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ConfirmPayment(r.Context(), service.ConfirmRequest{
		PaymentIntentID: req.PaymentIntentID,
		PaymentMethodID: req.PaymentMethodID,
		ExpectedAmount:  req.ExpectedAmount,
	})
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": result.Succeeded,
		"status":  result.Status,
	})
}

// GetPaymentIntent handles GET /api/donations/payment-intent/{id}.
// The response is a fresh read from the gateway; nothing is cached.
func (h *DonationHandler) GetPaymentIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.svc.GetPaymentIntent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"paymentIntent": intent,
	})
}

// Refund handles POST /api/donations/refund.
func (h *DonationHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req model.RefundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	refund, err := h.svc.CreateRefund(r.Context(), req)
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"refund":  refund,
	})
}

// Receipt handles GET /api/donations/receipt/{paymentIntentId},
// serving the PDF as a download.
func (h *DonationHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("paymentIntentId")
	path, err := h.svc.ReceiptPath(r.Context(), id)
	if err != nil {
		writeError(w, err, h.production)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="receipt_`+id+`.pdf"`)
	http.ServeFile(w, r, path)
}
