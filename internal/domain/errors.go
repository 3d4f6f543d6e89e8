package domain

import (
	"errors"
	"fmt"
)

// Resolution and precondition failures. Callers match these with errors.Is.
var (
	// ErrUnsupportedGateway is returned when a requested gateway name has no
	// registered adapter.
	ErrUnsupportedGateway = errors.New("unsupported payment gateway")

	// ErrNoGatewayConfigured is returned when no adapter is registered at all.
	ErrNoGatewayConfigured = errors.New("no payment gateway configured")

	// ErrGatewayUnavailable is returned when an adapter exists but its
	// provider client was never configured (missing or placeholder credentials).
	ErrGatewayUnavailable = errors.New("payment gateway is not available")

	// ErrPaymentNotFound is returned when no record exists for the given
	// internal transaction id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrGatewayMismatch is returned when the record's gateway differs from
	// the one requested.
	ErrGatewayMismatch = errors.New("payment belongs to a different gateway")

	// ErrNotRefundable is returned when the payment is not in a refundable
	// state.
	ErrNotRefundable = errors.New("payment is not in a refundable state")

	// ErrInvalidRefundAmount is returned when the requested refund exceeds
	// the remaining refundable amount.
	ErrInvalidRefundAmount = errors.New("refund amount exceeds refundable balance")
)

// GatewayError wraps a failed or timed-out provider call. It is retryable by
// the caller; the core never retries it.
type GatewayError struct {
	Gateway Gateway
	Op      string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps a provider error with the gateway and operation that
// produced it.
func NewGatewayError(gateway Gateway, op string, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Op: op, Err: err}
}

// IsGatewayError reports whether err is a provider communication failure.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
