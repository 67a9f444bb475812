package service

import (
	"context"
	"errors"
	"testing"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	pkgstripe "github.com/givebridge/backend/pkg/stripe"
)

// ---------------------------------------------------------------------------
// Mock gateway client
// ---------------------------------------------------------------------------

type mockStripeClient struct {
	createIntentFunc  func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error)
	confirmIntentFunc func(ctx context.Context, id, paymentMethodID string) (*pkgstripe.Intent, error)
	getIntentFunc     func(ctx context.Context, id string) (*pkgstripe.Intent, error)
	createRefundFunc  func(ctx context.Context, params pkgstripe.RefundParams) (*pkgstripe.Refund, error)
	verifyFunc        func(payload []byte, sigHeader string) error
	parseFunc         func(payload []byte) (pkgstripe.WebhookEvent, error)
}

func (m *mockStripeClient) CreatePaymentIntent(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, params)
	}
	return &pkgstripe.Intent{ID: "pi_mock", ClientSecret: "pi_mock_secret", Amount: params.Amount}, nil
}
func (m *mockStripeClient) ConfirmPaymentIntent(ctx context.Context, id, paymentMethodID string) (*pkgstripe.Intent, error) {
	if m.confirmIntentFunc != nil {
		return m.confirmIntentFunc(ctx, id, paymentMethodID)
	}
	return &pkgstripe.Intent{ID: id, Status: model.IntentStatusSucceeded}, nil
}
func (m *mockStripeClient) GetPaymentIntent(ctx context.Context, id string) (*pkgstripe.Intent, error) {
	if m.getIntentFunc != nil {
		return m.getIntentFunc(ctx, id)
	}
	return &pkgstripe.Intent{ID: id, Status: model.IntentStatusSucceeded}, nil
}
func (m *mockStripeClient) CreateRefund(ctx context.Context, params pkgstripe.RefundParams) (*pkgstripe.Refund, error) {
	if m.createRefundFunc != nil {
		return m.createRefundFunc(ctx, params)
	}
	return &pkgstripe.Refund{ID: "re_mock", PaymentIntentID: params.PaymentIntentID, Amount: params.Amount}, nil
}
func (m *mockStripeClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(payload, sigHeader)
	}
	return nil
}
func (m *mockStripeClient) ParseWebhookEvent(payload []byte) (pkgstripe.WebhookEvent, error) {
	if m.parseFunc != nil {
		return m.parseFunc(payload)
	}
	return pkgstripe.WebhookEvent{}, nil
}

// ---------------------------------------------------------------------------
// Mock ledger / receipts / notifier
// ---------------------------------------------------------------------------

type mockDonationRepository struct {
	createFunc       func(ctx context.Context, d *model.Donation) error
	getByIntentFunc  func(ctx context.Context, paymentIntentID string) (*model.Donation, error)
	markRefundedFunc func(ctx context.Context, paymentIntentID, refundID string, amount int64) error
	listFunc         func(ctx context.Context, limit, offset int) ([]*model.Donation, error)
}

func (m *mockDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, d)
	}
	return nil
}
func (m *mockDonationRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Donation, error) {
	if m.getByIntentFunc != nil {
		return m.getByIntentFunc(ctx, paymentIntentID)
	}
	return nil, repository.ErrNotFound
}
func (m *mockDonationRepository) MarkRefunded(ctx context.Context, paymentIntentID, refundID string, amount int64) error {
	if m.markRefundedFunc != nil {
		return m.markRefundedFunc(ctx, paymentIntentID, refundID, amount)
	}
	return nil
}
func (m *mockDonationRepository) List(ctx context.Context, limit, offset int) ([]*model.Donation, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

type mockReceiptProvider struct {
	pathFunc           func(paymentIntentID string) string
	existsFunc         func(paymentIntentID string) bool
	generateFunc       func(d *model.Donation) (string, error)
	generateRefundFunc func(d *model.Donation, r *model.Refund) (string, error)
}

func (m *mockReceiptProvider) Path(paymentIntentID string) string {
	if m.pathFunc != nil {
		return m.pathFunc(paymentIntentID)
	}
	return "/receipts/receipt_" + paymentIntentID + ".pdf"
}
func (m *mockReceiptProvider) Exists(paymentIntentID string) bool {
	if m.existsFunc != nil {
		return m.existsFunc(paymentIntentID)
	}
	return false
}
func (m *mockReceiptProvider) Generate(d *model.Donation) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(d)
	}
	return "/receipts/receipt_" + d.PaymentIntentID + ".pdf", nil
}
func (m *mockReceiptProvider) GenerateRefund(d *model.Donation, r *model.Refund) (string, error) {
	if m.generateRefundFunc != nil {
		return m.generateRefundFunc(d, r)
	}
	return "/receipts/refund_" + r.ID + ".pdf", nil
}

type mockRefundNotifier struct {
	refundFunc func(ctx context.Context, d *model.Donation, r *model.Refund) error
}

func (m *mockRefundNotifier) SendRefundNotification(ctx context.Context, d *model.Donation, r *model.Refund) error {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, d, r)
	}
	return nil
}

func newTestDonationService(client pkgstripe.Client, ledger repository.DonationRepository) DonationService {
	return NewDonationService(client, ledger, &mockReceiptProvider{}, &mockRefundNotifier{}, 1, 10000)
}

func validDonationRequest() model.DonationRequest {
	return model.DonationRequest{
		Amount:     50,
		ProjectID:  "general",
		DonorName:  "Jane Doe",
		DonorEmail: "jane@example.com",
	}
}

// ---------------------------------------------------------------------------
// CreatePaymentIntent
// ---------------------------------------------------------------------------

func TestDonationService_CreatePaymentIntent_Success(t *testing.T) {
	var captured pkgstripe.IntentParams
	client := &mockStripeClient{
		createIntentFunc: func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
			captured = params
			return &pkgstripe.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: params.Amount}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	result, err := svc.CreatePaymentIntent(context.Background(), validDonationRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PaymentIntentID != "pi_1" {
		t.Errorf("expected pi_1, got %q", result.PaymentIntentID)
	}
	if result.ClientSecret != "pi_1_secret" {
		t.Errorf("expected client secret, got %q", result.ClientSecret)
	}
	if captured.Amount != 5000 {
		t.Errorf("expected amount in minor units 5000, got %d", captured.Amount)
	}
	if captured.Metadata["donor_name"] != "Jane Doe" {
		t.Errorf("expected donor_name metadata, got %q", captured.Metadata["donor_name"])
	}
}

func TestDonationService_CreatePaymentIntent_RejectsBeforeGateway(t *testing.T) {
	gatewayCalled := false
	client := &mockStripeClient{
		createIntentFunc: func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
			gatewayCalled = true
			return nil, nil
		},
	}
	svc := newTestDonationService(client, nil)

	req := validDonationRequest()
	req.Amount = 0.50
	_, err := svc.CreatePaymentIntent(context.Background(), req)

	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if gatewayCalled {
		t.Error("invalid request must never reach the gateway")
	}
}

func TestDonationService_CreatePaymentIntent_AnonymousStoresPlaceholder(t *testing.T) {
	var captured pkgstripe.IntentParams
	client := &mockStripeClient{
		createIntentFunc: func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
			captured = params
			return &pkgstripe.Intent{ID: "pi_1", Amount: params.Amount}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	req := validDonationRequest()
	req.Anonymous = true
	req.DonorName = ""
	if _, err := svc.CreatePaymentIntent(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Metadata["donor_name"] != model.AnonymousDonorName {
		t.Errorf("expected %q, got %q", model.AnonymousDonorName, captured.Metadata["donor_name"])
	}
	if captured.Metadata["anonymous"] != "true" {
		t.Errorf("expected anonymous=true metadata, got %q", captured.Metadata["anonymous"])
	}
}

func TestDonationService_CreatePaymentIntent_FractionalCents(t *testing.T) {
	var captured pkgstripe.IntentParams
	client := &mockStripeClient{
		createIntentFunc: func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
			captured = params
			return &pkgstripe.Intent{ID: "pi_1", Amount: params.Amount}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	req := validDonationRequest()
	req.Amount = 10.10 // 10.10*100 is 1009.999... in float64
	if _, err := svc.CreatePaymentIntent(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Amount != 1010 {
		t.Errorf("expected rounded 1010 minor units, got %d", captured.Amount)
	}
}

func TestDonationService_CreatePaymentIntent_CardErrorMapped(t *testing.T) {
	client := &mockStripeClient{
		createIntentFunc: func(ctx context.Context, params pkgstripe.IntentParams) (*pkgstripe.Intent, error) {
			return nil, &pkgstripe.Error{Code: "card_declined", Message: "Your card was declined.", CardDecline: true}
		},
	}
	svc := newTestDonationService(client, nil)

	_, err := svc.CreatePaymentIntent(context.Background(), validDonationRequest())
	var ge *apperr.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !ge.CardDecline {
		t.Error("expected CardDecline preserved")
	}
}

// ---------------------------------------------------------------------------
// ConfirmPayment
// ---------------------------------------------------------------------------

func TestDonationService_ConfirmPayment_ReportsGatewayStatus(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Amount: 5000, Status: model.IntentStatusSucceeded}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	result, err := svc.ConfirmPayment(context.Background(), ConfirmRequest{PaymentIntentID: "pi_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Succeeded {
		t.Error("expected Succeeded=true")
	}
	if result.Status != model.IntentStatusSucceeded {
		t.Errorf("expected status succeeded, got %q", result.Status)
	}
}

func TestDonationService_ConfirmPayment_AmountMismatchRejected(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Amount: 5000, Status: model.IntentStatusSucceeded}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	_, err := svc.ConfirmPayment(context.Background(), ConfirmRequest{
		PaymentIntentID: "pi_1",
		ExpectedAmount:  9999, // disagrees with the gateway record
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError on amount mismatch, got %v", err)
	}
}

func TestDonationService_ConfirmPayment_MissingID(t *testing.T) {
	svc := newTestDonationService(&mockStripeClient{}, nil)
	if _, err := svc.ConfirmPayment(context.Background(), ConfirmRequest{}); err == nil {
		t.Fatal("expected error for missing payment intent id")
	}
}

func TestDonationService_GetPaymentIntent_NotFound(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return nil, &pkgstripe.Error{Code: "resource_missing", Message: "No such payment_intent", NotFound: true}
		},
	}
	svc := newTestDonationService(client, nil)

	_, err := svc.GetPaymentIntent(context.Background(), "pi_missing")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// CreateRefund
// ---------------------------------------------------------------------------

func TestDonationService_CreateRefund_Success(t *testing.T) {
	var captured pkgstripe.RefundParams
	var marked bool
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Amount: 5000, AmountReceived: 5000, Status: model.IntentStatusSucceeded}, nil
		},
		createRefundFunc: func(ctx context.Context, params pkgstripe.RefundParams) (*pkgstripe.Refund, error) {
			captured = params
			return &pkgstripe.Refund{ID: "re_1", PaymentIntentID: params.PaymentIntentID, Amount: 2500, Status: "succeeded"}, nil
		},
	}
	ledger := &mockDonationRepository{
		markRefundedFunc: func(ctx context.Context, paymentIntentID, refundID string, amount int64) error {
			marked = true
			return nil
		},
	}
	svc := newTestDonationService(client, ledger)

	refund, err := svc.CreateRefund(context.Background(), model.RefundRequest{PaymentIntentID: "pi_1", Amount: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refund.ID != "re_1" {
		t.Errorf("expected re_1, got %q", refund.ID)
	}
	if captured.Amount != 2500 {
		t.Errorf("expected 2500 minor units, got %d", captured.Amount)
	}
	if captured.Reason != model.RefundReasonRequestedByCustomer {
		t.Errorf("expected default reason, got %q", captured.Reason)
	}
	if !marked {
		t.Error("expected ledger MarkRefunded to be called")
	}
}

func TestDonationService_CreateRefund_ExceedsCaptured(t *testing.T) {
	refundCalled := false
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Amount: 5000, AmountReceived: 5000, Status: model.IntentStatusSucceeded}, nil
		},
		createRefundFunc: func(ctx context.Context, params pkgstripe.RefundParams) (*pkgstripe.Refund, error) {
			refundCalled = true
			return nil, nil
		},
	}
	svc := newTestDonationService(client, nil)

	_, err := svc.CreateRefund(context.Background(), model.RefundRequest{PaymentIntentID: "pi_1", Amount: 100})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if refundCalled {
		t.Error("over-captured refund must never reach the gateway")
	}
}

func TestDonationService_CreateRefund_RequiresSucceededStatus(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Status: model.IntentStatusRequiresPaymentMethod}, nil
		},
	}
	svc := newTestDonationService(client, nil)

	if _, err := svc.CreateRefund(context.Background(), model.RefundRequest{PaymentIntentID: "pi_1"}); err == nil {
		t.Fatal("expected error refunding an unsettled payment")
	}
}

func TestDonationService_CreateRefund_NotifierFailureNotFatal(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Amount: 5000, AmountReceived: 5000, Status: model.IntentStatusSucceeded}, nil
		},
	}
	notifier := &mockRefundNotifier{
		refundFunc: func(ctx context.Context, d *model.Donation, r *model.Refund) error {
			return errors.New("mail provider down")
		},
	}
	svc := NewDonationService(client, nil, &mockReceiptProvider{}, notifier, 1, 10000)

	if _, err := svc.CreateRefund(context.Background(), model.RefundRequest{PaymentIntentID: "pi_1"}); err != nil {
		t.Fatalf("mail failure must not fail the refund, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ReceiptPath
// ---------------------------------------------------------------------------

func TestDonationService_ReceiptPath_ExistingFile(t *testing.T) {
	generateCalled := false
	receipts := &mockReceiptProvider{
		existsFunc: func(paymentIntentID string) bool { return true },
		generateFunc: func(d *model.Donation) (string, error) {
			generateCalled = true
			return "", nil
		},
	}
	svc := NewDonationService(&mockStripeClient{}, nil, receipts, nil, 1, 10000)

	path, err := svc.ReceiptPath(context.Background(), "pi_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == "" {
		t.Error("expected a path")
	}
	if generateCalled {
		t.Error("existing receipt must not be regenerated")
	}
}

func TestDonationService_ReceiptPath_GeneratesFromLedger(t *testing.T) {
	var generated *model.Donation
	receipts := &mockReceiptProvider{
		generateFunc: func(d *model.Donation) (string, error) {
			generated = d
			return "/receipts/receipt_pi_1.pdf", nil
		},
	}
	ledger := &mockDonationRepository{
		getByIntentFunc: func(ctx context.Context, paymentIntentID string) (*model.Donation, error) {
			return &model.Donation{PaymentIntentID: paymentIntentID, DonorName: "Jane Doe", Amount: 5000}, nil
		},
	}
	svc := NewDonationService(&mockStripeClient{}, ledger, receipts, nil, 1, 10000)

	if _, err := svc.ReceiptPath(context.Background(), "pi_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generated == nil || generated.DonorName != "Jane Doe" {
		t.Error("expected receipt generated from the ledger row")
	}
}

func TestDonationService_ReceiptPath_UnsettledPaymentNotFound(t *testing.T) {
	client := &mockStripeClient{
		getIntentFunc: func(ctx context.Context, id string) (*pkgstripe.Intent, error) {
			return &pkgstripe.Intent{ID: id, Status: model.IntentStatusProcessing}, nil
		},
	}
	svc := NewDonationService(client, nil, &mockReceiptProvider{}, nil, 1, 10000)

	_, err := svc.ReceiptPath(context.Background(), "pi_pending")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for unsettled payment, got %v", err)
	}
}
