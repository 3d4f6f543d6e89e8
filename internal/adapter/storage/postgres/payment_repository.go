package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/observability/telemetry"
	"github.com/seu-repo/multipay/internal/ports"
)

type PaymentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPaymentRepository(db *gorm.DB, log *zap.Logger) ports.PaymentRepository {
	return &PaymentRepository{
		db:  db,
		log: log,
	}
}

func (r *PaymentRepository) SavePayment(ctx context.Context, payment *domain.Payment) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Save(payment).Error
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	return err
}

func (r *PaymentRepository) GetPayment(ctx context.Context, transactionID string) (*domain.Payment, error) {
	var payment domain.Payment
	start := time.Now()
	err := r.db.WithContext(ctx).First(&payment, "transaction_id = ?", transactionID).Error
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetPaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, "gateway_transaction_id = ?", providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) SaveRefund(ctx context.Context, refund *domain.Refund) error {
	return r.db.WithContext(ctx).Save(refund).Error
}

func (r *PaymentRepository) GetRefundsByPayment(ctx context.Context, paymentID string) ([]domain.Refund, error) {
	var refunds []domain.Refund
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Order("created_at asc").Find(&refunds).Error
	return refunds, err
}
