package mocks

import (
	"context"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

// MockGatewayRegistry is a mock implementation of GatewayRegistry
type MockGatewayRegistry struct {
	ResolveFunc func(name string) (ports.PaymentGateway, error)
	NamesFunc   func() []string
}

func (m *MockGatewayRegistry) Resolve(name string) (ports.PaymentGateway, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(name)
	}
	return &MockPaymentGateway{}, nil
}

func (m *MockGatewayRegistry) Names() []string {
	if m.NamesFunc != nil {
		return m.NamesFunc()
	}
	return []string{"mock"}
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	GatewayName     domain.Gateway
	InitiateFunc    func(ctx context.Context, params ports.InitiateParams) (*ports.GatewayResult, error)
	QueryStatusFunc func(ctx context.Context, providerID string) (*ports.GatewayResult, error)
	RefundFunc      func(ctx context.Context, providerID string, amount, remaining float64) (*ports.RefundOutcome, error)
}

func (m *MockPaymentGateway) Name() domain.Gateway {
	if m.GatewayName != "" {
		return m.GatewayName
	}
	return "mock"
}

func (m *MockPaymentGateway) Initiate(ctx context.Context, params ports.InitiateParams) (*ports.GatewayResult, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, params)
	}
	return &ports.GatewayResult{ProviderID: "mock_1", Status: domain.PaymentStatusPending}, nil
}

func (m *MockPaymentGateway) QueryStatus(ctx context.Context, providerID string) (*ports.GatewayResult, error) {
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx, providerID)
	}
	return &ports.GatewayResult{ProviderID: providerID, Status: domain.PaymentStatusPending}, nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, providerID string, amount, remaining float64) (*ports.RefundOutcome, error) {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, providerID, amount, remaining)
	}
	return &ports.RefundOutcome{RefundID: "mock_rfnd_1", ProviderID: providerID, Status: domain.PaymentStatusRefunded}, nil
}
