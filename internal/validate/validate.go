// Package validate contains pure input validation for donation and
// refund payloads. Functions here never touch the network, never panic,
// and report every problem found rather than stopping at the first.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
)

const (
	maxEmailLength   = 254
	maxNameLength    = 100
	maxMessageLength = 500
)

var (
	// donorNamePattern allows Unicode letters, spaces, hyphens,
	// apostrophes and periods (covers "O'Brien", "Anne-Marie", "Dr. Wu").
	donorNamePattern = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)

	// slugPattern matches friendly project ids like "clean-water-2026".
	slugPattern = regexp.MustCompile(`^[a-z0-9-]{3,64}$`)
)

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool
	Errors []apperr.FieldError
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, apperr.FieldError{Field: field, Message: message})
}

// Err converts a failed Result into a *apperr.ValidationError, or nil
// when the result is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &apperr.ValidationError{Errors: r.Errors}
}

// Clean strips control characters (newline and tab excepted) from
// free-text input before it is stored or mailed.
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Donation checks a DonationRequest against the configured amount bounds.
func Donation(req model.DonationRequest, minAmount, maxAmount float64) Result {
	var r Result

	if req.Amount < minAmount || req.Amount > maxAmount {
		r.add("amount", "amount must be between 1.00 and 10000.00")
	}

	if !Email(req.DonorEmail) {
		r.add("donorEmail", "a valid email address is required")
	}

	name := strings.TrimSpace(req.DonorName)
	if req.Anonymous {
		// Anonymous donations may omit the name entirely.
		if name != "" && !validName(name) {
			r.add("donorName", "name contains invalid characters")
		}
	} else {
		if name == "" {
			r.add("donorName", "donor name is required for non-anonymous donations")
		} else if !validName(name) {
			r.add("donorName", "name must be 1-100 letters, spaces, hyphens, apostrophes or periods")
		}
	}

	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		r.add("message", "message must be at most 500 characters")
	}

	if !ProjectID(req.ProjectID) {
		r.add("projectId", `projectId must be "general", a UUID, or a lowercase slug`)
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// Refund checks a RefundRequest. Amount bounds against the captured
// amount are enforced later by the service, which knows the gateway record.
func Refund(req model.RefundRequest) Result {
	var r Result

	if strings.TrimSpace(req.PaymentIntentID) == "" {
		r.add("paymentIntentId", "paymentIntentId is required")
	}
	if req.Amount < 0 {
		r.add("amount", "refund amount must be positive")
	}
	if req.Reason != "" {
		switch req.Reason {
		case model.RefundReasonRequestedByCustomer,
			model.RefundReasonDuplicate,
			model.RefundReasonFraudulent:
		default:
			r.add("reason", "reason must be requested_by_customer, duplicate or fraudulent")
		}
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// Email reports whether s is a plain RFC 5322 address of sane length.
// Display names ("Alice <a@b.com>") are rejected.
func Email(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// ProjectID reports whether s is the literal "general" (case-insensitive),
// a valid UUID, or a friendly slug.
func ProjectID(s string) bool {
	if strings.EqualFold(s, "general") {
		return true
	}
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	return slugPattern.MatchString(s)
}

func validName(s string) bool {
	return utf8.RuneCountInString(s) <= maxNameLength && donorNamePattern.MatchString(s)
}
