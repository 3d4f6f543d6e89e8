package ports

import (
	"context"
	"time"

	"github.com/seu-repo/multipay/internal/domain"
)

// InitiateRequest is the initiate intent handed in by the HTTP layer, already
// validated there.
type InitiateRequest struct {
	Amount           float64
	Currency         string
	PaymentMethod    string
	PreferredGateway string
	Details          map[string]interface{}
}

// PaymentResult is the normalized result returned to the caller for every
// operation; the HTTP layer maps it to status codes.
type PaymentResult struct {
	TransactionID        string                 `json:"transaction_id"`
	GatewayTransactionID string                 `json:"gateway_transaction_id,omitempty"`
	Status               domain.PaymentStatus   `json:"status"`
	Message              string                 `json:"message,omitempty"`
	Gateway              domain.Gateway         `json:"gateway"`
	Amount               float64                `json:"amount"`
	Currency             string                 `json:"currency"`
	Timestamp            time.Time              `json:"timestamp"`
	GatewayResponse      map[string]interface{} `json:"gateway_response,omitempty"`
}

// PaymentService drives a payment through the state machine: it resolves an
// adapter, delegates, normalizes and always persists the outcome before
// returning, failure paths included.
type PaymentService interface {
	InitiatePayment(ctx context.Context, req *InitiateRequest) (*PaymentResult, error)
	GetStatus(ctx context.Context, transactionID, gatewayName string) (*PaymentResult, error)
	RefundPayment(ctx context.Context, transactionID, gatewayName string, amount float64) (*PaymentResult, error)
}
