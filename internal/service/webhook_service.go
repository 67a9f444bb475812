package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	pkgstripe "github.com/givebridge/backend/pkg/stripe"
)

// EventHandler is the extension point for webhook side effects: one
// method per event kind this backend acts on. The dispatch mechanism in
// WebhookService never changes when side effects do.
type EventHandler interface {
	HandlePaymentSucceeded(ctx context.Context, event pkgstripe.WebhookEvent) error
	HandlePaymentFailed(ctx context.Context, event pkgstripe.WebhookEvent) error
	HandleChargeRefunded(ctx context.Context, event pkgstripe.WebhookEvent) error
}

// WebhookService verifies, deduplicates and dispatches gateway webhook
// events. The provider delivers at least once, so every event id is
// recorded before its handler runs; a redelivery is acknowledged without
// side effects.
type WebhookService interface {
	Process(ctx context.Context, payload []byte, sigHeader string) error
}

type webhookServiceImpl struct {
	client  pkgstripe.Client
	events  repository.WebhookEventRepository
	handler EventHandler
}

// NewWebhookService creates a WebhookService dispatching to handler.
func NewWebhookService(client pkgstripe.Client, events repository.WebhookEventRepository, handler EventHandler) WebhookService {
	return &webhookServiceImpl{client: client, events: events, handler: handler}
}

// Process verifies the signature over the raw payload bytes first; no
// parsing or business logic runs on an unauthenticated body. Unknown
// event types are logged and acknowledged.
func (s *webhookServiceImpl) Process(ctx context.Context, payload []byte, sigHeader string) error {
	if err := s.client.VerifyWebhookSignature(payload, sigHeader); err != nil {
		return &apperr.SignatureError{Reason: err.Error()}
	}

	event, err := s.client.ParseWebhookEvent(payload)
	if err != nil {
		return &apperr.SignatureError{Reason: "unparseable event payload"}
	}

	switch event.Type {
	case model.EventPaymentSucceeded, model.EventPaymentFailed, model.EventChargeRefunded:
	default:
		slog.Info("webhook: ignoring event type", "type", event.Type, "id", event.ID)
		return nil
	}

	if err := s.events.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			slog.Info("webhook: duplicate delivery acknowledged", "id", event.ID, "type", event.Type)
			return nil
		}
		return err
	}

	var handleErr error
	switch event.Type {
	case model.EventPaymentSucceeded:
		handleErr = s.handler.HandlePaymentSucceeded(ctx, event)
	case model.EventPaymentFailed:
		handleErr = s.handler.HandlePaymentFailed(ctx, event)
	case model.EventChargeRefunded:
		handleErr = s.handler.HandleChargeRefunded(ctx, event)
	}
	if handleErr != nil {
		// Give the claim back so the provider's retry is not deduplicated
		// into a lost side effect.
		if relErr := s.events.Release(ctx, event.ID); relErr != nil {
			slog.Error("webhook: failed to release event claim", "id", event.ID, "error", relErr)
		}
		return handleErr
	}
	return nil
}

// ---------------------------------------------------------------------------
// Default event handler
// ---------------------------------------------------------------------------

// LedgerEventHandler is the production EventHandler: it records the
// donation ledger, generates receipts and sends donor mail. Mail and
// receipt failures are logged, never escalated — the gateway state
// change already happened.
type LedgerEventHandler struct {
	ledger   repository.DonationRepository
	receipts ReceiptProvider
	mail     EventMailer
}

// EventMailer is the mail surface webhook handlers need.
type EventMailer interface {
	SendDonationConfirmation(ctx context.Context, d *model.Donation) error
	SendRefundNotification(ctx context.Context, d *model.Donation, r *model.Refund) error
}

var _ EventHandler = (*LedgerEventHandler)(nil)

// NewLedgerEventHandler creates the production event handler. receipts
// and mail may be nil; the corresponding side effect is skipped.
func NewLedgerEventHandler(ledger repository.DonationRepository, receipts ReceiptProvider, mail EventMailer) *LedgerEventHandler {
	return &LedgerEventHandler{ledger: ledger, receipts: receipts, mail: mail}
}

// HandlePaymentSucceeded records the ledger row and triggers receipt and
// confirmation mail. A duplicate payment intent id (event redelivered
// under a fresh event id) is treated the same as a duplicate event.
func (h *LedgerEventHandler) HandlePaymentSucceeded(ctx context.Context, event pkgstripe.WebhookEvent) error {
	obj := event.Data.Object

	donorName := obj.Metadata["donor_name"]
	if donorName == "" {
		donorName = model.AnonymousDonorName
	}

	d := &model.Donation{
		PaymentIntentID: obj.ID,
		ProjectID:       obj.Metadata["project_id"],
		ProjectTitle:    obj.Metadata["project_title"],
		DonorName:       donorName,
		DonorEmail:      obj.Metadata["donor_email"],
		Anonymous:       obj.Metadata["anonymous"] == "true",
		Amount:          obj.Amount,
		Currency:        obj.Currency,
		Message:         obj.Metadata["message"],
		Status:          model.DonationStatusSucceeded,
	}

	if h.ledger != nil {
		if err := h.ledger.Create(ctx, d); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				slog.Info("webhook: payment already recorded", "payment_intent", obj.ID)
				return nil
			}
			return err
		}
	}

	slog.Info("donation recorded",
		"payment_intent", obj.ID, "amount", obj.Amount, "project", d.ProjectID)

	if h.receipts != nil {
		if _, err := h.receipts.Generate(d); err != nil {
			slog.Warn("webhook: receipt generation failed", "payment_intent", obj.ID, "error", err)
		}
	}
	if h.mail != nil && d.DonorEmail != "" {
		if err := h.mail.SendDonationConfirmation(ctx, d); err != nil {
			slog.Warn("webhook: confirmation mail failed", "payment_intent", obj.ID, "error", err)
		}
	}
	return nil
}

// HandlePaymentFailed logs the failure with the gateway's decline detail.
// No ledger row exists yet for a failed payment, so there is nothing to
// update.
func (h *LedgerEventHandler) HandlePaymentFailed(_ context.Context, event pkgstripe.WebhookEvent) error {
	obj := event.Data.Object
	code, msg := "", ""
	if obj.LastPaymentError != nil {
		code, msg = obj.LastPaymentError.Code, obj.LastPaymentError.Message
	}
	slog.Warn("payment failed",
		"payment_intent", obj.ID, "amount", obj.Amount, "code", code, "message", msg)
	return nil
}

// HandleChargeRefunded marks the ledger row refunded and notifies the
// donor. The event's data.object is a charge, so the payment intent id
// comes from its payment_intent field.
func (h *LedgerEventHandler) HandleChargeRefunded(ctx context.Context, event pkgstripe.WebhookEvent) error {
	obj := event.Data.Object
	paymentIntentID := obj.PaymentIntent
	if paymentIntentID == "" {
		slog.Warn("webhook: charge.refunded without payment_intent", "charge", obj.ID)
		return nil
	}

	if h.ledger == nil {
		slog.Info("charge refunded", "payment_intent", paymentIntentID, "amount_refunded", obj.AmountRefunded)
		return nil
	}

	if err := h.ledger.MarkRefunded(ctx, paymentIntentID, obj.ID, obj.AmountRefunded); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Refund for a payment this backend never recorded; worth a
			// warning but not a retry from the provider.
			slog.Warn("webhook: refund for unknown payment", "payment_intent", paymentIntentID)
			return nil
		}
		return err
	}

	slog.Info("donation refunded", "payment_intent", paymentIntentID, "amount_refunded", obj.AmountRefunded)

	if h.mail != nil {
		if d, err := h.ledger.GetByPaymentIntentID(ctx, paymentIntentID); err == nil && d.DonorEmail != "" {
			refund := &model.Refund{
				ID:              obj.ID,
				PaymentIntentID: paymentIntentID,
				Amount:          obj.AmountRefunded,
				Currency:        obj.Currency,
			}
			if err := h.mail.SendRefundNotification(ctx, d, refund); err != nil {
				slog.Warn("webhook: refund mail failed", "payment_intent", paymentIntentID, "error", err)
			}
		}
	}
	return nil
}
