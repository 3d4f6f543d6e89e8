package payment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestMapStripeIntentStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.PaymentStatus
	}{
		{"requires_payment_method", domain.PaymentStatusPendingUserAction},
		{"requires_confirmation", domain.PaymentStatusPendingUserAction},
		{"requires_action", domain.PaymentStatusPendingUserAction},
		{"processing", domain.PaymentStatusPending},
		{"requires_capture", domain.PaymentStatusAuthorized},
		{"succeeded", domain.PaymentStatusSuccess},
		{"canceled", domain.PaymentStatusCanceled},
		{"SUCCEEDED", domain.PaymentStatusSuccess},
		{"some_future_status", domain.PaymentStatusUnknown},
		{"", domain.PaymentStatusUnknown},
	}
	for _, c := range cases {
		if got := mapStripeIntentStatus(c.raw); got != c.want {
			t.Errorf("mapStripeIntentStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestMapStripeRefundStatus(t *testing.T) {
	// Full refund: requested amount covers the whole remaining balance
	if got := mapStripeRefundStatus("succeeded", 100, 100); got != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", got)
	}
	// amount <= 0 means full remaining refund
	if got := mapStripeRefundStatus("succeeded", 0, 100); got != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", got)
	}
	// Partial refund leaves balance behind
	if got := mapStripeRefundStatus("succeeded", 40, 100); got != domain.PaymentStatusPartiallyRefunded {
		t.Errorf("expected PARTIALLY_REFUNDED, got %s", got)
	}
	// Pending refunds count as issued
	if got := mapStripeRefundStatus("pending", 40, 100); got != domain.PaymentStatusPartiallyRefunded {
		t.Errorf("expected PARTIALLY_REFUNDED, got %s", got)
	}
	if got := mapStripeRefundStatus("failed", 40, 100); got != domain.PaymentStatusRefundFailed {
		t.Errorf("expected REFUND_FAILED, got %s", got)
	}
	if got := mapStripeRefundStatus("whatever", 40, 100); got != domain.PaymentStatusUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{10, 1000},
		{49.90, 4990},
		{0.1, 10},
		{19.99, 1999},
		{0.005, 1}, // rounds, not truncates
	}
	for _, c := range cases {
		if got := toMinorUnits(c.amount); got != c.want {
			t.Errorf("toMinorUnits(%v) = %d, want %d", c.amount, got, c.want)
		}
	}
}

func TestStripeGateway_UnavailableWithPlaceholderKey(t *testing.T) {
	// Arrange
	gw := NewStripeGateway("sk_test_YOUR_STRIPE_SECRET_KEY", newTestLogger())

	// Act
	_, err := gw.Initiate(context.Background(), ports.InitiateParams{
		Amount:   100,
		Currency: "USD",
	})

	// Assert
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}

	_, err = gw.QueryStatus(context.Background(), "pi_123")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}

	_, err = gw.Refund(context.Background(), "pi_123", 50, 100)
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestStripeGateway_RefundAmountExceedsRemaining(t *testing.T) {
	gw := NewStripeGateway("sk_test_real_looking_key_for_tests", newTestLogger())

	_, err := gw.Refund(context.Background(), "pi_123", 150, 100)
	if !errors.Is(err, domain.ErrInvalidRefundAmount) {
		t.Errorf("expected ErrInvalidRefundAmount, got %v", err)
	}
}
