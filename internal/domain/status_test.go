package domain

import "testing"

func TestCanTransition_HappyPath(t *testing.T) {
	steps := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusPendingUserAction,
		PaymentStatusAuthorized,
		PaymentStatusSuccess,
		PaymentStatusPartiallyRefunded,
		PaymentStatusRefunded,
	}
	for i := 0; i < len(steps)-1; i++ {
		if !CanTransition(steps[i], steps[i+1]) {
			t.Errorf("expected %s -> %s to be legal", steps[i], steps[i+1])
		}
	}
}

func TestCanTransition_SelfIsAlwaysLegal(t *testing.T) {
	all := []PaymentStatus{
		PaymentStatusPending, PaymentStatusPendingUserAction, PaymentStatusAuthorized,
		PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCanceled,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded, PaymentStatusRefundFailed,
		PaymentStatusError,
	}
	for _, s := range all {
		if !CanTransition(s, s) {
			t.Errorf("expected %s -> %s to be legal", s, s)
		}
	}
}

func TestCanTransition_IllegalEdges(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
	}{
		{PaymentStatusSuccess, PaymentStatusPending},
		{PaymentStatusRefunded, PaymentStatusSuccess},
		{PaymentStatusFailed, PaymentStatusSuccess},
		{PaymentStatusCanceled, PaymentStatusPending},
		{PaymentStatusError, PaymentStatusSuccess},
		{PaymentStatusAuthorized, PaymentStatusPendingUserAction},
	}
	for _, c := range cases {
		if CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be illegal", c.from, c.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []PaymentStatus{
		PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusRefunded, PaymentStatusError,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	open := []PaymentStatus{
		PaymentStatusPending, PaymentStatusPendingUserAction, PaymentStatusAuthorized,
		PaymentStatusSuccess, PaymentStatusPartiallyRefunded, PaymentStatusRefundFailed,
	}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestIsRefundable(t *testing.T) {
	if !PaymentStatusSuccess.IsRefundable() {
		t.Error("expected SUCCESS to be refundable")
	}
	if !PaymentStatusPartiallyRefunded.IsRefundable() {
		t.Error("expected PARTIALLY_REFUNDED to be refundable")
	}
	if PaymentStatusPending.IsRefundable() {
		t.Error("expected PENDING not to be refundable")
	}
	if PaymentStatusRefunded.IsRefundable() {
		t.Error("expected REFUNDED not to be refundable")
	}
}

func TestRemainingRefundable(t *testing.T) {
	p := &Payment{Amount: 100, RefundedAmount: 30}
	if got := p.RemainingRefundable(); got != 70 {
		t.Errorf("expected 70, got %v", got)
	}

	p = &Payment{Amount: 100, RefundedAmount: 120}
	if got := p.RemainingRefundable(); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
