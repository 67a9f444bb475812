// Package handler contains the HTTP route layer: JSON decoding, error
// mapping and response shaping. Business decisions live in service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/givebridge/backend/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the apperr taxonomy onto HTTP statuses. Card declines
// keep their message; other gateway failures stay generic in production
// so provider internals never leak to clients.
func writeError(w http.ResponseWriter, err error, production bool) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation_failed", Errors: ve.Errors})
		return
	}

	var nfe *apperr.NotFoundError
	if errors.As(err, &nfe) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
		return
	}

	var se *apperr.SignatureError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "signature_verification_failed"})
		return
	}

	var ge *apperr.GatewayError
	if errors.As(err, &ge) {
		if ge.CardDecline {
			writeJSON(w, http.StatusPaymentRequired, errorBody{Error: ge.Message})
			return
		}
		slog.Error("gateway error", "code", ge.Code, "error", ge.Message)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "payment_gateway_error"})
		return
	}

	var de *apperr.DeliveryError
	if errors.As(err, &de) {
		slog.Error("mail delivery error", "error", de.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "delivery_failed"})
		return
	}

	slog.Error("unhandled error", "error", err)
	msg := "internal_error"
	if !production {
		msg = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msg})
}

// decodeJSON decodes the request body into v, rejecting unknown garbage
// with a uniform 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return false
	}
	return true
}
