package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

type stubPaymentService struct {
	InitiateFunc func(ctx context.Context, req *ports.InitiateRequest) (*ports.PaymentResult, error)
	GetFunc      func(ctx context.Context, transactionID, gatewayName string) (*ports.PaymentResult, error)
	RefundFunc   func(ctx context.Context, transactionID, gatewayName string, amount float64) (*ports.PaymentResult, error)
}

func (s *stubPaymentService) InitiatePayment(ctx context.Context, req *ports.InitiateRequest) (*ports.PaymentResult, error) {
	return s.InitiateFunc(ctx, req)
}

func (s *stubPaymentService) GetStatus(ctx context.Context, transactionID, gatewayName string) (*ports.PaymentResult, error) {
	return s.GetFunc(ctx, transactionID, gatewayName)
}

func (s *stubPaymentService) RefundPayment(ctx context.Context, transactionID, gatewayName string, amount float64) (*ports.PaymentResult, error) {
	return s.RefundFunc(ctx, transactionID, gatewayName, amount)
}

func newTestApp(service ports.PaymentService) *fiber.App {
	logger := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	handler := NewPaymentHandler(service, logger)
	app.Post("/payments", handler.Initiate)
	app.Get("/payments/:id/status", handler.GetStatus)
	app.Post("/payments/:id/refund", handler.Refund)
	return app
}

func TestInitiate_PersistedFailureCarriesErrorStatusCode(t *testing.T) {
	// Arrange: the service persisted a FAILED record for an unavailable
	// gateway and returns it alongside the error.
	failed := &ports.PaymentResult{
		TransactionID: "txn-1",
		Status:        domain.PaymentStatusFailed,
		Gateway:       domain.GatewayStripe,
	}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable gateway", domain.ErrGatewayUnavailable, fiber.StatusServiceUnavailable},
		{"provider call failure", domain.NewGatewayError(domain.GatewayStripe, "initiate", errors.New("card declined")), fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubPaymentService{
				InitiateFunc: func(ctx context.Context, req *ports.InitiateRequest) (*ports.PaymentResult, error) {
					return failed, tt.err
				},
			}
			app := newTestApp(service)

			req := httptest.NewRequest("POST", "/payments", strings.NewReader(`{"amount":10,"currency":"USD"}`))
			req.Header.Set("Content-Type", "application/json")

			// Act
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			// Assert: the mapped code, with the persisted result as the body.
			if resp.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
			var body ports.PaymentResult
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.TransactionID != "txn-1" {
				t.Errorf("expected the persisted result in the body, got %+v", body)
			}
		})
	}
}

func TestRefund_PersistedFailureCarriesErrorStatusCode(t *testing.T) {
	service := &stubPaymentService{
		RefundFunc: func(ctx context.Context, transactionID, gatewayName string, amount float64) (*ports.PaymentResult, error) {
			return &ports.PaymentResult{
				TransactionID: transactionID,
				Status:        domain.PaymentStatusRefundFailed,
			}, domain.NewGatewayError(domain.GatewayStripe, "refund", errors.New("charge_already_refunded"))
		},
	}
	app := newTestApp(service)

	resp, err := app.Test(httptest.NewRequest("POST", "/payments/txn-1/refund", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("expected status 502, got %d", resp.StatusCode)
	}
}

func TestInitiate_ValidatesAmountAndCurrency(t *testing.T) {
	service := &stubPaymentService{
		InitiateFunc: func(ctx context.Context, req *ports.InitiateRequest) (*ports.PaymentResult, error) {
			t.Error("expected no service call on validation failure")
			return nil, nil
		},
	}
	app := newTestApp(service)

	for _, body := range []string{`{"amount":0,"currency":"USD"}`, `{"amount":10,"currency":" "}`} {
		req := httptest.NewRequest("POST", "/payments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("expected status 400 for %s, got %d", body, resp.StatusCode)
		}
	}
}
