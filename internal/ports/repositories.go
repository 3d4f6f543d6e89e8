package ports

import (
	"context"

	"github.com/seu-repo/multipay/internal/domain"
)

// PaymentRepository handles payment persistence. Each call is atomic; the
// orchestrator serializes read-modify-write sequences per record on top of
// it.
type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *domain.Payment) error
	GetPayment(ctx context.Context, transactionID string) (*domain.Payment, error)
	GetPaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error)
	SaveRefund(ctx context.Context, refund *domain.Refund) error
	GetRefundsByPayment(ctx context.Context, paymentID string) ([]domain.Refund, error)
}
