package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	"github.com/givebridge/backend/internal/validate"
	pkgstripe "github.com/givebridge/backend/pkg/stripe"
)

// CreateIntentResult is returned after creating a payment intent.
type CreateIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"` // minor units
}

// ConfirmRequest asks the gateway to confirm a payment intent.
// ExpectedAmount (minor units) is an optional client-side cross-check;
// when present it is compared against the gateway's own record and a
// mismatch is rejected — the gateway record is the sole authority.
type ConfirmRequest struct {
	PaymentIntentID string
	PaymentMethodID string
	ExpectedAmount  int64
}

// ConfirmResult reports the gateway status after confirmation.
type ConfirmResult struct {
	Succeeded bool   `json:"success"`
	Status    string `json:"status"`
}

// ReceiptProvider is the minimal receipt interface DonationService needs.
type ReceiptProvider interface {
	Path(paymentIntentID string) string
	Exists(paymentIntentID string) bool
	Generate(d *model.Donation) (string, error)
	GenerateRefund(d *model.Donation, r *model.Refund) (string, error)
}

// RefundNotifier is the minimal mail interface the refund flow needs.
type RefundNotifier interface {
	SendRefundNotification(ctx context.Context, d *model.Donation, r *model.Refund) error
}

// DonationService provides the payment-intent lifecycle operations.
// All gateway state is read through, never cached.
type DonationService interface {
	CreatePaymentIntent(ctx context.Context, req model.DonationRequest) (*CreateIntentResult, error)
	ConfirmPayment(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
	GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error)
	CreateRefund(ctx context.Context, req model.RefundRequest) (*model.Refund, error)
	// ReceiptPath returns the path of the receipt for a succeeded payment,
	// generating it on first request.
	ReceiptPath(ctx context.Context, paymentIntentID string) (string, error)
}

type donationServiceImpl struct {
	client    pkgstripe.Client
	ledger    repository.DonationRepository // optional, nil = gateway-only mode
	receipts  ReceiptProvider
	notifier  RefundNotifier // optional, nil = skip
	currency  string
	minAmount float64
	maxAmount float64
}

// NewDonationService creates a DonationService. ledger and notifier may
// be nil; the service then works purely against the gateway.
func NewDonationService(client pkgstripe.Client, ledger repository.DonationRepository, receipts ReceiptProvider, notifier RefundNotifier, minAmount, maxAmount float64) DonationService {
	return &donationServiceImpl{
		client:    client,
		ledger:    ledger,
		receipts:  receipts,
		notifier:  notifier,
		currency:  "usd",
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// CreatePaymentIntent validates the request, converts the amount to
// minor units, and creates the intent with the donation context embedded
// as metadata. Invalid input never reaches the gateway.
func (s *donationServiceImpl) CreatePaymentIntent(ctx context.Context, req model.DonationRequest) (*CreateIntentResult, error) {
	if result := validate.Donation(req, s.minAmount, s.maxAmount); !result.Valid {
		return nil, result.Err()
	}

	donorName := strings.TrimSpace(req.DonorName)
	if req.Anonymous || donorName == "" {
		donorName = model.AnonymousDonorName
	}

	minor := toMinorUnits(req.Amount)
	intent, err := s.client.CreatePaymentIntent(ctx, pkgstripe.IntentParams{
		Amount:       minor,
		Currency:     s.currency,
		ReceiptEmail: req.DonorEmail,
		Description:  "Donation to " + projectDescription(req),
		Metadata: map[string]string{
			"project_id":    req.ProjectID,
			"project_title": req.ProjectTitle,
			"donor_name":    donorName,
			"donor_email":   req.DonorEmail,
			"anonymous":     strconv.FormatBool(req.Anonymous),
			"message":       validate.Clean(req.Message),
		},
	})
	if err != nil {
		return nil, mapGatewayError(err, "payment intent", "")
	}

	return &CreateIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
	}, nil
}

// ConfirmPayment confirms the intent and then re-fetches it, reporting
// status from the gateway's record only. A client-supplied expected
// amount that disagrees with the gateway record is rejected outright.
func (s *donationServiceImpl) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		return nil, apperr.NewValidation("paymentIntentId", "paymentIntentId is required")
	}

	if _, err := s.client.ConfirmPaymentIntent(ctx, req.PaymentIntentID, req.PaymentMethodID); err != nil {
		return nil, mapGatewayError(err, "payment intent", req.PaymentIntentID)
	}

	// Re-fetch: the confirmed record from the gateway is the only
	// authority on amount and status.
	intent, err := s.client.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, mapGatewayError(err, "payment intent", req.PaymentIntentID)
	}

	if req.ExpectedAmount > 0 && req.ExpectedAmount != intent.Amount {
		return nil, apperr.NewValidation("expectedAmount",
			fmt.Sprintf("amount mismatch: gateway has %d, client sent %d", intent.Amount, req.ExpectedAmount))
	}

	return &ConfirmResult{
		Succeeded: intent.Status == model.IntentStatusSucceeded || intent.Status == model.IntentStatusProcessing,
		Status:    intent.Status,
	}, nil
}

// GetPaymentIntent re-fetches the intent from the gateway.
func (s *donationServiceImpl) GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.NewValidation("id", "payment intent id is required")
	}
	intent, err := s.client.GetPaymentIntent(ctx, id)
	if err != nil {
		return nil, mapGatewayError(err, "payment intent", id)
	}
	return intentToModel(intent), nil
}

// CreateRefund validates the request against the gateway's captured
// amount and issues the refund. Omitted amount means a full refund.
func (s *donationServiceImpl) CreateRefund(ctx context.Context, req model.RefundRequest) (*model.Refund, error) {
	if result := validate.Refund(req); !result.Valid {
		return nil, result.Err()
	}

	intent, err := s.client.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, mapGatewayError(err, "payment intent", req.PaymentIntentID)
	}
	if intent.Status != model.IntentStatusSucceeded {
		return nil, apperr.NewValidation("paymentIntentId",
			"only succeeded payments can be refunded (status: "+intent.Status+")")
	}

	minor := toMinorUnits(req.Amount)
	if minor > intent.AmountReceived {
		return nil, apperr.NewValidation("amount",
			fmt.Sprintf("refund amount %d exceeds captured amount %d", minor, intent.AmountReceived))
	}

	reason := req.Reason
	if reason == "" {
		reason = model.RefundReasonRequestedByCustomer
	}

	ref, err := s.client.CreateRefund(ctx, pkgstripe.RefundParams{
		PaymentIntentID: req.PaymentIntentID,
		Amount:          minor, // 0 = full refund
		Reason:          reason,
	})
	if err != nil {
		return nil, mapGatewayError(err, "payment intent", req.PaymentIntentID)
	}

	refund := &model.Refund{
		ID:              ref.ID,
		PaymentIntentID: req.PaymentIntentID,
		Amount:          ref.Amount,
		Currency:        ref.Currency,
		Status:          ref.Status,
		Reason:          reason,
	}

	s.recordRefund(ctx, intent, refund)
	return refund, nil
}

// recordRefund updates the ledger and notifies the donor. Both are
// best-effort: the gateway refund already happened and must be reported
// as successful regardless.
func (s *donationServiceImpl) recordRefund(ctx context.Context, intent *pkgstripe.Intent, refund *model.Refund) {
	var donation *model.Donation
	if s.ledger != nil {
		if err := s.ledger.MarkRefunded(ctx, refund.PaymentIntentID, refund.ID, refund.Amount); err != nil {
			slog.Warn("refund: ledger update failed", "payment_intent", refund.PaymentIntentID, "error", err)
		}
		if d, err := s.ledger.GetByPaymentIntentID(ctx, refund.PaymentIntentID); err == nil {
			donation = d
		}
	}
	if donation == nil {
		donation = donationFromIntent(intent)
	}

	if s.receipts != nil {
		if _, err := s.receipts.GenerateRefund(donation, refund); err != nil {
			slog.Warn("refund: receipt generation failed", "refund", refund.ID, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.SendRefundNotification(ctx, donation, refund); err != nil {
			slog.Warn("refund: notification failed", "refund", refund.ID, "error", err)
		}
	}
}

// ReceiptPath returns the receipt path for a succeeded payment,
// generating the PDF on first request. Write and read share the same
// naming function, so Generate(id) ⇒ Exists(id) always holds.
func (s *donationServiceImpl) ReceiptPath(ctx context.Context, paymentIntentID string) (string, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return "", apperr.NewValidation("paymentIntentId", "payment intent id is required")
	}
	if s.receipts.Exists(paymentIntentID) {
		return s.receipts.Path(paymentIntentID), nil
	}

	donation, err := s.lookupDonation(ctx, paymentIntentID)
	if err != nil {
		return "", err
	}
	return s.receipts.Generate(donation)
}

// lookupDonation prefers the ledger row; when absent it reconstructs the
// donation from the gateway record, which must report succeeded.
func (s *donationServiceImpl) lookupDonation(ctx context.Context, paymentIntentID string) (*model.Donation, error) {
	if s.ledger != nil {
		d, err := s.ledger.GetByPaymentIntentID(ctx, paymentIntentID)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	intent, err := s.client.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, mapGatewayError(err, "receipt", paymentIntentID)
	}
	if intent.Status != model.IntentStatusSucceeded {
		return nil, &apperr.NotFoundError{Resource: "receipt", ID: paymentIntentID}
	}
	return donationFromIntent(intent), nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func projectDescription(req model.DonationRequest) string {
	if req.ProjectTitle != "" {
		return req.ProjectTitle
	}
	if strings.EqualFold(req.ProjectID, "general") {
		return "General Fund"
	}
	return req.ProjectID
}

func intentToModel(in *pkgstripe.Intent) *model.PaymentIntent {
	return &model.PaymentIntent{
		ID:             in.ID,
		Amount:         in.Amount,
		AmountReceived: in.AmountReceived,
		Currency:       in.Currency,
		Status:         in.Status,
		ClientSecret:   in.ClientSecret,
		Metadata:       in.Metadata,
	}
}

// donationFromIntent rebuilds a donation view from gateway metadata for
// flows that run without a ledger row.
func donationFromIntent(in *pkgstripe.Intent) *model.Donation {
	md := in.Metadata
	donorName := md["donor_name"]
	if donorName == "" {
		donorName = model.AnonymousDonorName
	}
	created := time.Now().UTC()
	if in.Created > 0 {
		created = time.Unix(in.Created, 0).UTC()
	}
	return &model.Donation{
		CreatedAt:       created,
		PaymentIntentID: in.ID,
		ProjectID:       md["project_id"],
		ProjectTitle:    md["project_title"],
		DonorName:       donorName,
		DonorEmail:      md["donor_email"],
		Anonymous:       md["anonymous"] == "true",
		Amount:          in.Amount,
		Currency:        in.Currency,
		Message:         md["message"],
		Status:          in.Status,
	}
}

// mapGatewayError converts pkg/stripe errors into the apperr taxonomy.
func mapGatewayError(err error, resource, id string) error {
	var se *pkgstripe.Error
	if errors.As(err, &se) {
		if se.NotFound {
			return &apperr.NotFoundError{Resource: resource, ID: id}
		}
		return &apperr.GatewayError{
			Code:        se.Code,
			Message:     se.Message,
			CardDecline: se.CardDecline,
			HTTPStatus:  se.HTTPStatus,
		}
	}
	if errors.Is(err, pkgstripe.ErrNotConfigured) {
		return &apperr.GatewayError{Code: "not_configured", Message: "payment gateway is not configured"}
	}
	return err
}
