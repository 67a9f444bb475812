package model

// PaymentIntent is the backend's read-only view of a gateway payment
// intent. The gateway owns the lifecycle; this struct is re-fetched on
// every read and never persisted.
type PaymentIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"` // minor units
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	ClientSecret   string            `json:"client_secret,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Payment intent statuses as reported by the gateway.
// Observed lifecycle: requires_payment_method → requires_confirmation →
// processing → {succeeded | requires_action | canceled}.
const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusProcessing            = "processing"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
)

// Refund is the backend's view of a gateway refund.
type Refund struct {
	ID              string `json:"id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"` // minor units
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

// Webhook event types this backend acts on. Everything else is logged
// and acknowledged without side effects.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
)
