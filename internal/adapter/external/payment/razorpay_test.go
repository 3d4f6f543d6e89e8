package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

func TestMapRazorpayPaymentStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.PaymentStatus
	}{
		{"created", domain.PaymentStatusPending},
		{"authorized", domain.PaymentStatusAuthorized},
		{"captured", domain.PaymentStatusSuccess},
		{"failed", domain.PaymentStatusFailed},
		{"refunded", domain.PaymentStatusRefunded},
		{"Captured", domain.PaymentStatusSuccess},
		{"disputed", domain.PaymentStatusUnknown},
		{"", domain.PaymentStatusUnknown},
	}
	for _, c := range cases {
		if got := mapRazorpayPaymentStatus(c.raw); got != c.want {
			t.Errorf("mapRazorpayPaymentStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestMapRazorpayOrderStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.PaymentStatus
	}{
		{"created", domain.PaymentStatusPendingUserAction},
		{"attempted", domain.PaymentStatusPending},
		{"paid", domain.PaymentStatusSuccess},
		{"expired", domain.PaymentStatusUnknown},
	}
	for _, c := range cases {
		if got := mapRazorpayOrderStatus(c.raw); got != c.want {
			t.Errorf("mapRazorpayOrderStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestMapRazorpayRefundStatus(t *testing.T) {
	if got := mapRazorpayRefundStatus("processed", 100, 100); got != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", got)
	}
	if got := mapRazorpayRefundStatus("processed", 30, 100); got != domain.PaymentStatusPartiallyRefunded {
		t.Errorf("expected PARTIALLY_REFUNDED, got %s", got)
	}
	if got := mapRazorpayRefundStatus("pending", 0, 100); got != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", got)
	}
	if got := mapRazorpayRefundStatus("failed", 30, 100); got != domain.PaymentStatusRefundFailed {
		t.Errorf("expected REFUND_FAILED, got %s", got)
	}
	if got := mapRazorpayRefundStatus("reversed", 30, 100); got != domain.PaymentStatusUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}

func TestSelectMostAdvanced(t *testing.T) {
	// A failed attempt followed by a captured retry: the captured one wins
	// regardless of order.
	items := []map[string]interface{}{
		{"id": "pay_failed", "status": "failed", "created_at": float64(200)},
		{"id": "pay_captured", "status": "captured", "created_at": float64(100)},
	}
	best := selectMostAdvanced(items)
	if best["id"] != "pay_captured" {
		t.Errorf("expected pay_captured, got %v", best["id"])
	}

	// Same rank: the most recent attempt wins.
	items = []map[string]interface{}{
		{"id": "pay_old", "status": "failed", "created_at": float64(100)},
		{"id": "pay_new", "status": "failed", "created_at": float64(300)},
	}
	best = selectMostAdvanced(items)
	if best["id"] != "pay_new" {
		t.Errorf("expected pay_new, got %v", best["id"])
	}

	// authorized beats failed, captured beats authorized
	items = []map[string]interface{}{
		{"id": "pay_auth", "status": "authorized", "created_at": float64(100)},
		{"id": "pay_fail", "status": "failed", "created_at": float64(400)},
	}
	best = selectMostAdvanced(items)
	if best["id"] != "pay_auth" {
		t.Errorf("expected pay_auth, got %v", best["id"])
	}

	if best := selectMostAdvanced(nil); best != nil {
		t.Errorf("expected nil for no attempts, got %v", best)
	}
}

func TestRazorpayAttemptRank(t *testing.T) {
	if razorpayAttemptRank("captured") <= razorpayAttemptRank("authorized") {
		t.Error("expected captured to outrank authorized")
	}
	if razorpayAttemptRank("authorized") <= razorpayAttemptRank("failed") {
		t.Error("expected authorized to outrank failed")
	}
	if razorpayAttemptRank("failed") <= razorpayAttemptRank("created") {
		t.Error("expected failed to outrank created")
	}
	if razorpayAttemptRank("refunded") != razorpayAttemptRank("captured") {
		t.Error("expected refunded to rank with captured")
	}
}

func TestRazorpayItems(t *testing.T) {
	resp := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"id": "pay_1"},
			"not-a-map",
			map[string]interface{}{"id": "pay_2"},
		},
	}
	items := razorpayItems(resp)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["id"] != "pay_1" || items[1]["id"] != "pay_2" {
		t.Errorf("unexpected items: %v", items)
	}

	if items := razorpayItems(map[string]interface{}{}); len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestRazorpayGateway_UnavailableWithPlaceholderKeys(t *testing.T) {
	gw := NewRazorpayGateway("YOUR_RAZORPAY_KEY_ID", "YOUR_RAZORPAY_KEY_SECRET", newTestLogger())

	_, err := gw.Initiate(context.Background(), ports.InitiateParams{
		Amount:   100,
		Currency: "INR",
	})
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}

	_, err = gw.QueryStatus(context.Background(), "order_123")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}

	_, err = gw.Refund(context.Background(), "order_123", 50, 100)
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}
}
