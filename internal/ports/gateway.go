package ports

import (
	"context"

	"github.com/seu-repo/multipay/internal/domain"
)

// InitiateParams carries everything an adapter needs to start a payment at
// its provider. Amount and currency are already validated at the HTTP
// boundary.
type InitiateParams struct {
	Amount        float64
	Currency      string
	PaymentMethod string

	// Reference is the internal transaction id, passed through to providers
	// that attach a receipt/reference to the initiation call.
	Reference string

	Details map[string]interface{}
}

// GatewayResult is the normalized outcome of an initiate or status call.
type GatewayResult struct {
	// ProviderID is the provider-side identifier for this payment. On a
	// status call it may already be upgraded from an initiation identifier
	// to a settlement identifier.
	ProviderID string

	Status domain.PaymentStatus

	// RawStatus preserves the provider's native status string for
	// diagnostics, in particular when Status is UNKNOWN.
	RawStatus string

	// Payload holds gateway-specific detail the client needs to complete
	// the flow (client secrets, order ids).
	Payload map[string]interface{}
}

// RefundOutcome is the normalized outcome of a refund call.
type RefundOutcome struct {
	RefundID string

	// ProviderID is the settlement identifier the refund was issued
	// against, after any implicit upgrade.
	ProviderID string

	Status    domain.PaymentStatus
	RawStatus string
	Payload   map[string]interface{}
}

// GatewayRegistry resolves adapters by name. Implementations are immutable
// after startup and safe for concurrent use.
type GatewayRegistry interface {
	// Resolve looks a gateway up case-insensitively; an empty name selects
	// the deterministic default.
	Resolve(name string) (PaymentGateway, error)
	Names() []string
}

// PaymentGateway is the per-provider adapter contract. Implementations
// translate generic requests into provider calls and provider responses back
// into the canonical status model. Status mapping must be a pure function of
// the provider's native value.
type PaymentGateway interface {
	// Name returns the stable identifier used as the registry key.
	Name() domain.Gateway

	// Initiate performs one outbound call creating the payment at the
	// provider. Returns ErrGatewayUnavailable when the provider client was
	// never configured, or a GatewayError when the call fails.
	Initiate(ctx context.Context, params InitiateParams) (*GatewayResult, error)

	// QueryStatus resolves the current canonical status for a provider
	// identifier. It tolerates an intermediate (order-level) identifier:
	// when no settlement-level status can be resolved yet it returns the
	// best-known intermediate status instead of failing. When multiple
	// settlement attempts exist it selects the most advanced one.
	QueryStatus(ctx context.Context, providerID string) (*GatewayResult, error)

	// Refund issues a refund against providerID, upgrading it to a
	// settlement identifier first when it is still an intermediate one.
	// amount <= 0 means refund the full remaining amount. remaining is the
	// refundable balance before this refund; the returned status is
	// REFUNDED when the refund exhausts it, PARTIALLY_REFUNDED otherwise,
	// REFUND_FAILED when the provider declines.
	Refund(ctx context.Context, providerID string, amount, remaining float64) (*RefundOutcome, error)
}
