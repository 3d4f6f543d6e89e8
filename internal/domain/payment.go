package domain

import (
	"time"
)

// Gateway identifies a payment provider
type Gateway string

const (
	GatewayStripe   Gateway = "stripe"
	GatewayRazorpay Gateway = "razorpay"
)

// Payment is the transaction record tying an internal transaction identity
// to a provider-specific identity across its lifecycle.
type Payment struct {
	// TransactionID is our system's identifier, generated once at creation.
	TransactionID string `json:"transaction_id" gorm:"primaryKey"`

	// GatewayTransactionID is the provider-side identifier. It starts empty
	// and may be overwritten when a provider replaces an initiation
	// identifier with a settlement identifier (razorpay order_ -> pay_).
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty" gorm:"index"`

	Gateway        Gateway       `json:"gateway" gorm:"index"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	RefundedAmount float64       `json:"refunded_amount"`
	Status         PaymentStatus `json:"status"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	Metadata       JSONMap       `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// RemainingRefundable returns how much of the captured amount can still be
// refunded.
func (p *Payment) RemainingRefundable() float64 {
	remaining := p.Amount - p.RefundedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Refund is one refund attempt against a payment, kept as an audit trail.
type Refund struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	PaymentID       string        `json:"payment_id" gorm:"index"`
	GatewayRefundID string        `json:"gateway_refund_id,omitempty"`
	Amount          float64       `json:"amount"`
	Status          PaymentStatus `json:"status"`
	Reason          string        `json:"reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// JSONMap is a helper type for JSONB columns
type JSONMap map[string]interface{}
