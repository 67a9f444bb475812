package model

import "time"

// DonationRequest is the client payload for creating a payment intent.
// Amount is in major currency units (e.g. 50 = $50.00).
type DonationRequest struct {
	Amount       float64 `json:"amount"`
	ProjectID    string  `json:"projectId"`
	ProjectTitle string  `json:"projectTitle,omitempty"`
	DonorName    string  `json:"donorName,omitempty"`
	DonorEmail   string  `json:"donorEmail"`
	Anonymous    bool    `json:"anonymous,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// RefundRequest is the client payload for issuing a refund.
// Amount is optional; zero means a full refund of the captured amount.
type RefundRequest struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// Refund reasons accepted by the gateway.
const (
	RefundReasonRequestedByCustomer = "requested_by_customer"
	RefundReasonDuplicate           = "duplicate"
	RefundReasonFraudulent          = "fraudulent"
)

// Donation is a ledger row recorded when the gateway reports a payment
// as succeeded. PaymentIntentID is unique: at-least-once webhook delivery
// must not produce two rows for the same payment.
type Donation struct {
	ID              string    `json:"id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ProjectID       string    `json:"project_id"`
	ProjectTitle    string    `json:"project_title,omitempty"`
	DonorName       string    `json:"donor_name"`
	DonorEmail      string    `json:"donor_email"`
	Anonymous       bool      `json:"anonymous"`
	Amount          int64     `json:"amount"` // minor units
	Currency        string    `json:"currency"`
	Message         string    `json:"message,omitempty"`
	Status          string    `json:"status"` // "succeeded" | "refunded"
	RefundID        string    `json:"refund_id,omitempty"`
	RefundedAmount  int64     `json:"refunded_amount,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Donation ledger statuses.
const (
	DonationStatusSucceeded = "succeeded"
	DonationStatusRefunded  = "refunded"
)

// AnonymousDonorName is stored whenever a donor chooses anonymity.
// The ledger never stores an empty donor name.
const AnonymousDonorName = "Anonymous"
