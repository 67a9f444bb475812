package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock DonationService
// ---------------------------------------------------------------------------

type mockDonationService struct {
	createIntentFunc func(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error)
	confirmFunc      func(ctx context.Context, req service.ConfirmRequest) (*service.ConfirmResult, error)
	getIntentFunc    func(ctx context.Context, id string) (*model.PaymentIntent, error)
	refundFunc       func(ctx context.Context, req model.RefundRequest) (*model.Refund, error)
	receiptPathFunc  func(ctx context.Context, paymentIntentID string) (string, error)
}

func (m *mockDonationService) CreatePaymentIntent(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, req)
	}
	return &service.CreateIntentResult{ClientSecret: "pi_secret", PaymentIntentID: "pi_1"}, nil
}
func (m *mockDonationService) ConfirmPayment(ctx context.Context, req service.ConfirmRequest) (*service.ConfirmResult, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, req)
	}
	return &service.ConfirmResult{Succeeded: true, Status: model.IntentStatusSucceeded}, nil
}
func (m *mockDonationService) GetPaymentIntent(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if m.getIntentFunc != nil {
		return m.getIntentFunc(ctx, id)
	}
	return &model.PaymentIntent{ID: id}, nil
}
func (m *mockDonationService) CreateRefund(ctx context.Context, req model.RefundRequest) (*model.Refund, error) {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, req)
	}
	return &model.Refund{ID: "re_1"}, nil
}
func (m *mockDonationService) ReceiptPath(ctx context.Context, paymentIntentID string) (string, error) {
	if m.receiptPathFunc != nil {
		return m.receiptPathFunc(ctx, paymentIntentID)
	}
	return "", &apperr.NotFoundError{Resource: "receipt", ID: paymentIntentID}
}

// pathRequest builds a request routed through a method-pattern mux so
// r.PathValue is populated like in production.
func pathRequest(t *testing.T, pattern, method, url string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, url, nil))
	return rec
}

// ---------------------------------------------------------------------------
// POST /api/donations/create-payment-intent
// ---------------------------------------------------------------------------

func TestDonationHandler_CreatePaymentIntent_Success(t *testing.T) {
	var captured model.DonationRequest
	mock := &mockDonationService{
		createIntentFunc: func(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error) {
			captured = req
			return &service.CreateIntentResult{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1", Amount: 5000}, nil
		},
	}
	h := NewDonationHandler(mock, false)

	body := `{"amount":50,"projectId":"general","donorName":"Jane Doe","donorEmail":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/create-payment-intent", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreatePaymentIntent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if captured.Amount != 50 || captured.ProjectID != "general" {
		t.Errorf("unexpected request forwarded: %+v", captured)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["success"] != true {
		t.Error("expected success=true")
	}
	if resp["clientSecret"] != "pi_1_secret" {
		t.Errorf("expected clientSecret, got %v", resp["clientSecret"])
	}
	if resp["paymentIntentId"] != "pi_1" {
		t.Errorf("expected paymentIntentId=pi_1, got %v", resp["paymentIntentId"])
	}
}

func TestDonationHandler_CreatePaymentIntent_ValidationErrors(t *testing.T) {
	mock := &mockDonationService{
		createIntentFunc: func(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error) {
			return nil, &apperr.ValidationError{Errors: []apperr.FieldError{
				{Field: "amount", Message: "amount must be between 1.00 and 10000.00"},
			}}
		},
	}
	h := NewDonationHandler(mock, false)

	req := httptest.NewRequest(http.MethodPost, "/api/donations/create-payment-intent", strings.NewReader(`{"amount":0.5}`))
	rec := httptest.NewRecorder()
	h.CreatePaymentIntent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Error  string             `json:"error"`
		Errors []apperr.FieldError `json:"errors"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "validation_failed" {
		t.Errorf("expected error=validation_failed, got %q", resp.Error)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "amount" {
		t.Errorf("expected field errors, got %+v", resp.Errors)
	}
}

func TestDonationHandler_CreatePaymentIntent_CardDeclined(t *testing.T) {
	mock := &mockDonationService{
		createIntentFunc: func(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error) {
			return nil, &apperr.GatewayError{Code: "card_declined", Message: "Your card was declined.", CardDecline: true}
		},
	}
	h := NewDonationHandler(mock, false)

	body := `{"amount":50,"projectId":"general","donorName":"Jane","donorEmail":"j@e.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/create-payment-intent", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreatePaymentIntent(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your card was declined.") {
		t.Error("card decline message must reach the client")
	}
}

func TestDonationHandler_CreatePaymentIntent_GatewayErrorStaysGeneric(t *testing.T) {
	mock := &mockDonationService{
		createIntentFunc: func(ctx context.Context, req model.DonationRequest) (*service.CreateIntentResult, error) {
			return nil, &apperr.GatewayError{Code: "api_error", Message: "internal provider detail"}
		},
	}
	h := NewDonationHandler(mock, true)

	body := `{"amount":50,"projectId":"general","donorName":"Jane","donorEmail":"j@e.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/create-payment-intent", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreatePaymentIntent(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal provider detail") {
		t.Error("provider internals must not leak to clients")
	}
}

// ---------------------------------------------------------------------------
// POST /api/donations/confirm-payment
// ---------------------------------------------------------------------------

func TestDonationHandler_ConfirmPayment_ForwardsExpectedAmount(t *testing.T) {
	var captured service.ConfirmRequest
	mock := &mockDonationService{
		confirmFunc: func(ctx context.Context, req service.ConfirmRequest) (*service.ConfirmResult, error) {
			captured = req
			return &service.ConfirmResult{Succeeded: true, Status: model.IntentStatusSucceeded}, nil
		},
	}
	h := NewDonationHandler(mock, false)

	body := `{"paymentIntentId":"pi_1","paymentMethodId":"pm_1","expectedAmount":5000}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/confirm-payment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ConfirmPayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if captured.PaymentIntentID != "pi_1" || captured.ExpectedAmount != 5000 {
		t.Errorf("unexpected confirm request: %+v", captured)
	}
}

// ---------------------------------------------------------------------------
// GET /api/donations/payment-intent/{id}
// ---------------------------------------------------------------------------

func TestDonationHandler_GetPaymentIntent_PathValue(t *testing.T) {
	var captured string
	mock := &mockDonationService{
		getIntentFunc: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			captured = id
			return &model.PaymentIntent{ID: id, Amount: 5000, Status: model.IntentStatusSucceeded}, nil
		},
	}
	h := NewDonationHandler(mock, false)

	rec := pathRequest(t, "GET /api/donations/payment-intent/{id}", http.MethodGet,
		"/api/donations/payment-intent/pi_abc", h.GetPaymentIntent)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured != "pi_abc" {
		t.Errorf("expected id=pi_abc from path, got %q", captured)
	}
}

func TestDonationHandler_GetPaymentIntent_NotFound(t *testing.T) {
	mock := &mockDonationService{
		getIntentFunc: func(ctx context.Context, id string) (*model.PaymentIntent, error) {
			return nil, &apperr.NotFoundError{Resource: "payment intent", ID: id}
		},
	}
	h := NewDonationHandler(mock, false)

	rec := pathRequest(t, "GET /api/donations/payment-intent/{id}", http.MethodGet,
		"/api/donations/payment-intent/pi_missing", h.GetPaymentIntent)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/donations/refund
// ---------------------------------------------------------------------------

func TestDonationHandler_Refund_Success(t *testing.T) {
	mock := &mockDonationService{
		refundFunc: func(ctx context.Context, req model.RefundRequest) (*model.Refund, error) {
			return &model.Refund{ID: "re_1", PaymentIntentID: req.PaymentIntentID, Amount: 2500, Status: "succeeded"}, nil
		},
	}
	h := NewDonationHandler(mock, false)

	body := `{"paymentIntentId":"pi_1","amount":25}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/refund", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Refund(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool          `json:"success"`
		Refund  *model.Refund `json:"refund"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Refund == nil || resp.Refund.ID != "re_1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// ---------------------------------------------------------------------------
// GET /api/donations/receipt/{paymentIntentId}
// ---------------------------------------------------------------------------

func TestDonationHandler_Receipt_NotFound(t *testing.T) {
	h := NewDonationHandler(&mockDonationService{}, false)

	rec := pathRequest(t, "GET /api/donations/receipt/{paymentIntentId}", http.MethodGet,
		"/api/donations/receipt/pi_none", h.Receipt)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing receipt, got %d", rec.Code)
	}
}
