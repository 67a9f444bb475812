// Package stripe wraps the Stripe API for Givebridge: payment intents,
// refunds, and webhook verification. API calls go through the official
// SDK; webhook signatures are verified by hand against the raw payload
// bytes so re-serialization can never invalidate them.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// ErrNotConfigured is returned when Stripe keys are missing.
var ErrNotConfigured = errors.New("stripe: not configured")

// Error is a classified Stripe API failure.
type Error struct {
	Code        string
	Message     string
	CardDecline bool // card_error: message is safe to show the donor
	NotFound    bool // resource_missing: unknown id
	HTTPStatus  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("stripe: %s (%s)", e.Message, e.Code)
}

// IntentParams carries everything needed to create a payment intent.
// Amount is in minor units; metadata embeds the donor/project context so
// webhook events are self-describing.
type IntentParams struct {
	Amount       int64
	Currency     string
	ReceiptEmail string
	Description  string
	Metadata     map[string]string
}

// RefundParams carries refund creation parameters. Amount 0 means a
// full refund.
type RefundParams struct {
	PaymentIntentID string
	Amount          int64
	Reason          string
}

// Intent is the subset of a Stripe payment intent this backend reads.
type Intent struct {
	ID             string
	Amount         int64
	AmountReceived int64
	Currency       string
	Status         string
	ClientSecret   string
	Created        int64
	Metadata       map[string]string
}

// Refund is the subset of a Stripe refund this backend reads.
type Refund struct {
	ID              string
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
	Reason          string
}

// WebhookEventObject is the polymorphic data.object of a webhook event.
// Fields are populated according to the event type (payment intent or
// charge).
type WebhookEventObject struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	AmountReceived   int64             `json:"amount_received"`
	AmountRefunded   int64             `json:"amount_refunded"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	PaymentIntent    string            `json:"payment_intent"` // set on charge objects
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// WebhookEvent is a parsed Stripe webhook event.
type WebhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object WebhookEventObject `json:"object"`
	} `json:"data"`
}

// Client is the gateway interface consumed by services. Implemented by
// RealClient; tests substitute func-field mocks.
type Client interface {
	// CreatePaymentIntent creates a payment intent and returns its id,
	// client secret and amount.
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	// ConfirmPaymentIntent asks Stripe to confirm with the given payment
	// method and returns the resulting intent.
	ConfirmPaymentIntent(ctx context.Context, id, paymentMethodID string) (*Intent, error)
	// GetPaymentIntent re-fetches the authoritative intent record.
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	// CreateRefund refunds a captured payment, fully when params.Amount is 0.
	CreateRefund(ctx context.Context, params RefundParams) (*Refund, error)
	// VerifyWebhookSignature verifies the Stripe-Signature header against
	// the raw request body.
	VerifyWebhookSignature(payload []byte, sigHeader string) error
	// ParseWebhookEvent decodes a webhook payload.
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

// RealClient talks to the Stripe API via the official SDK.
type RealClient struct {
	secretKey     string
	webhookSecret string
	sc            *stripeapi.Client
	// replayWindow bounds how old a webhook timestamp may be.
	replayWindow time.Duration
}

var _ Client = (*RealClient)(nil)

// NewClient builds a RealClient. Empty keys disable the corresponding
// operations with ErrNotConfigured rather than failing at startup, so
// the rest of the API stays usable in development.
func NewClient(secretKey, webhookSecret string) *RealClient {
	c := &RealClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		replayWindow:  5 * time.Minute,
	}
	if secretKey != "" {
		c.sc = stripeapi.NewClient(secretKey)
	}
	return c
}

// CreatePaymentIntent creates a card payment intent with the donation
// context embedded as metadata.
func (c *RealClient) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	if c.sc == nil {
		return nil, ErrNotConfigured
	}

	p := &stripeapi.PaymentIntentCreateParams{
		Amount:             stripeapi.Int64(params.Amount),
		Currency:           stripeapi.String(params.Currency),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		Metadata:           params.Metadata,
	}
	if params.ReceiptEmail != "" {
		p.ReceiptEmail = stripeapi.String(params.ReceiptEmail)
	}
	if params.Description != "" {
		p.Description = stripeapi.String(params.Description)
	}

	pi, err := c.sc.V1PaymentIntents.Create(ctx, p)
	if err != nil {
		return nil, mapError(err)
	}
	return intentFromAPI(pi), nil
}

// ConfirmPaymentIntent confirms the intent with the given payment method.
func (c *RealClient) ConfirmPaymentIntent(ctx context.Context, id, paymentMethodID string) (*Intent, error) {
	if c.sc == nil {
		return nil, ErrNotConfigured
	}

	p := &stripeapi.PaymentIntentConfirmParams{}
	if paymentMethodID != "" {
		p.PaymentMethod = stripeapi.String(paymentMethodID)
	}

	pi, err := c.sc.V1PaymentIntents.Confirm(ctx, id, p)
	if err != nil {
		return nil, mapError(err)
	}
	return intentFromAPI(pi), nil
}

// GetPaymentIntent fetches the intent from Stripe. The returned record is
// the sole authority on amount and status.
func (c *RealClient) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	if c.sc == nil {
		return nil, ErrNotConfigured
	}

	pi, err := c.sc.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, mapError(err)
	}
	return intentFromAPI(pi), nil
}

// CreateRefund refunds the payment, fully when params.Amount is 0.
func (c *RealClient) CreateRefund(ctx context.Context, params RefundParams) (*Refund, error) {
	if c.sc == nil {
		return nil, ErrNotConfigured
	}

	p := &stripeapi.RefundCreateParams{
		PaymentIntent: stripeapi.String(params.PaymentIntentID),
	}
	if params.Amount > 0 {
		p.Amount = stripeapi.Int64(params.Amount)
	}
	if params.Reason != "" {
		p.Reason = stripeapi.String(params.Reason)
	}

	ref, err := c.sc.V1Refunds.Create(ctx, p)
	if err != nil {
		return nil, mapError(err)
	}

	out := &Refund{
		ID:       ref.ID,
		Amount:   ref.Amount,
		Currency: string(ref.Currency),
		Status:   string(ref.Status),
		Reason:   string(ref.Reason),
	}
	if ref.PaymentIntent != nil {
		out.PaymentIntentID = ref.PaymentIntent.ID
	}
	return out, nil
}

// VerifyWebhookSignature verifies the Stripe-Signature header
// (t=<unix>,v1=<hex hmac>) with HMAC-SHA256 over "<t>.<payload>" and a
// constant-time comparison. Timestamps older than the replay window are
// rejected.
func (c *RealClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if c.webhookSecret == "" {
		return ErrNotConfigured
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("stripe: invalid signature header format")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.New("stripe: invalid timestamp in signature header")
	}
	if time.Since(time.Unix(ts, 0)) > c.replayWindow {
		return errors.New("stripe: webhook timestamp too old")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errors.New("stripe: signature verification failed")
}

// ParseWebhookEvent decodes the raw payload into a WebhookEvent.
func (c *RealClient) ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("stripe: parse webhook event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return WebhookEvent{}, errors.New("stripe: webhook event missing id or type")
	}
	return event, nil
}

func intentFromAPI(pi *stripeapi.PaymentIntent) *Intent {
	return &Intent{
		ID:             pi.ID,
		Amount:         pi.Amount,
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		Status:         string(pi.Status),
		ClientSecret:   pi.ClientSecret,
		Created:        pi.Created,
		Metadata:       pi.Metadata,
	}
}

// mapError classifies SDK errors: card declines keep their message,
// resource_missing becomes a not-found, anything else stays generic.
func mapError(err error) error {
	var sErr *stripeapi.Error
	if !errors.As(err, &sErr) {
		return &Error{Code: "api_error", Message: err.Error()}
	}
	return &Error{
		Code:        string(sErr.Code),
		Message:     sErr.Msg,
		CardDecline: sErr.Type == stripeapi.ErrorTypeCard,
		NotFound:    sErr.Code == stripeapi.ErrorCodeResourceMissing,
		HTTPStatus:  sErr.HTTPStatusCode,
	}
}
