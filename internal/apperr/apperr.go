// Package apperr defines the error taxonomy shared across services and
// handlers. Handlers map these types to HTTP status codes; everything
// below the handler layer wraps provider errors into one of them.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes a single client-fixable input problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field errors. Always a 400.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError indicates an unknown resource id. Always a 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// SignatureError indicates a failed webhook authentication. Always a 400,
// returned before any business logic runs.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return "webhook signature: " + e.Reason
}

// GatewayError wraps a payment-provider failure. Card declines surface
// their message to the client; infrastructure failures stay generic so
// provider internals don't leak.
type GatewayError struct {
	Code        string
	Message     string
	CardDecline bool
	HTTPStatus  int
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment gateway: %s (%s)", e.Message, e.Code)
	}
	return "payment gateway: " + e.Message
}

// DeliveryError wraps a mail-provider failure. Logged by callers, never
// surfaced to donor-facing flows.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "mail delivery: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsCardError reports whether err is a GatewayError caused by a card
// decline (message safe to show to the donor).
func IsCardError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.CardDecline
}
