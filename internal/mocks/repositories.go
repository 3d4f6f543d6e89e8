package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/multipay/internal/domain"
)

// MockPaymentRepository is a mock implementation of PaymentRepository backed
// by in-memory maps. Func fields override the default behavior per test.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
	refunds  map[string][]domain.Refund

	SavePaymentFunc            func(ctx context.Context, payment *domain.Payment) error
	GetPaymentFunc             func(ctx context.Context, transactionID string) (*domain.Payment, error)
	GetPaymentByProviderIDFunc func(ctx context.Context, providerID string) (*domain.Payment, error)
	SaveRefundFunc             func(ctx context.Context, refund *domain.Refund) error
	GetRefundsByPaymentFunc    func(ctx context.Context, paymentID string) ([]domain.Refund, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]domain.Payment),
		refunds:  make(map[string][]domain.Refund),
	}
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment *domain.Payment) error {
	if m.SavePaymentFunc != nil {
		return m.SavePaymentFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.TransactionID] = *payment
	return nil
}

func (m *MockPaymentRepository) GetPayment(ctx context.Context, transactionID string) (*domain.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[transactionID]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (m *MockPaymentRepository) GetPaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	if m.GetPaymentByProviderIDFunc != nil {
		return m.GetPaymentByProviderIDFunc(ctx, providerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.GatewayTransactionID == providerID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) SaveRefund(ctx context.Context, refund *domain.Refund) error {
	if m.SaveRefundFunc != nil {
		return m.SaveRefundFunc(ctx, refund)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds[refund.PaymentID] = append(m.refunds[refund.PaymentID], *refund)
	return nil
}

func (m *MockPaymentRepository) GetRefundsByPayment(ctx context.Context, paymentID string) ([]domain.Refund, error) {
	if m.GetRefundsByPaymentFunc != nil {
		return m.GetRefundsByPaymentFunc(ctx, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refunds[paymentID], nil
}

// Stored returns a copy of the persisted record, for assertions.
func (m *MockPaymentRepository) Stored(transactionID string) *domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[transactionID]; ok {
		cp := p
		return &cp
	}
	return nil
}
