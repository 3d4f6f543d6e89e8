package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/observability/telemetry"
	"github.com/seu-repo/multipay/internal/ports"
)

const (
	defaultGatewayTimeout = 15 * time.Second

	cacheTTL = 5 * time.Minute

	subjectInitiated     = "payment.initiated"
	subjectStatusChanged = "payment.status_changed"
	subjectRefunded      = "payment.refunded"
	subjectRefundFailed  = "payment.refund_failed"
)

// Service implements PaymentService. All provider interaction goes through
// the registry; all read-modify-write sequences on a record run under that
// record's lock so concurrent calls for the same transaction serialize.
type Service struct {
	repo     ports.PaymentRepository
	registry ports.GatewayRegistry
	queue    ports.MessageQueue
	cache    ports.Cache
	log      *zap.Logger

	callTimeout time.Duration

	locksMu sync.Mutex
	locks   map[string]*recordLock
}

// recordLock is a reference-counted per-record mutex; the entry is removed
// once the last holder releases it so the lock table stays bounded by the
// number of in-flight operations, not by the number of records ever seen.
type recordLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a new payment service. queue and cache may be nil;
// events and snapshots are then skipped.
func NewService(repo ports.PaymentRepository, registry ports.GatewayRegistry, queue ports.MessageQueue, cache ports.Cache, callTimeout time.Duration, log *zap.Logger) *Service {
	if callTimeout <= 0 {
		callTimeout = defaultGatewayTimeout
	}
	return &Service{
		repo:        repo,
		registry:    registry,
		queue:       queue,
		cache:       cache,
		callTimeout: callTimeout,
		log:         log,
		locks:       make(map[string]*recordLock),
	}
}

// lock acquires the per-record mutex and returns its unlock func.
func (s *Service) lock(transactionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[transactionID]
	if !ok {
		l = &recordLock{}
		s.locks[transactionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, transactionID)
		}
		s.locksMu.Unlock()
	}
}

// InitiatePayment creates a new payment record and starts it at the resolved
// gateway. The record is persisted before the provider call so a crash
// mid-flight still leaves a traceable PENDING row, and persisted again with
// the outcome, failure paths included.
func (s *Service) InitiatePayment(ctx context.Context, req *ports.InitiateRequest) (*ports.PaymentResult, error) {
	gw, err := s.registry.Resolve(req.PreferredGateway)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &domain.Payment{
		TransactionID: uuid.New().String(),
		Gateway:       gw.Name(),
		Amount:        req.Amount,
		Currency:      strings.ToUpper(req.Currency),
		Status:        domain.PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	unlock := s.lock(payment.TransactionID)
	defer unlock()

	result, err := s.callInitiate(ctx, gw, payment, req)
	if err != nil {
		return s.persistInitiateFailure(ctx, payment, err)
	}

	payment.GatewayTransactionID = result.ProviderID
	s.transition(payment, result.Status, result.RawStatus)
	if err := s.repo.SavePayment(ctx, payment); err != nil {
		s.log.Error("Failed to update payment record",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
	}

	telemetry.PaymentsTotal.WithLabelValues(string(payment.Gateway), payment.Status.String()).Inc()
	telemetry.PaymentAmountTotal.WithLabelValues(string(payment.Gateway), payment.Currency).Add(payment.Amount)

	res := s.toResult(payment, "payment initiated", result.Payload)
	s.publish(subjectInitiated, res)
	s.cacheResult(ctx, res)

	s.log.Info("Payment initiated",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway", string(payment.Gateway)),
		zap.String("gateway_transaction_id", payment.GatewayTransactionID),
		zap.String("status", payment.Status.String()),
	)
	return res, nil
}

func (s *Service) callInitiate(ctx context.Context, gw ports.PaymentGateway, payment *domain.Payment, req *ports.InitiateRequest) (*ports.GatewayResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	result, err := gw.Initiate(callCtx, ports.InitiateParams{
		Amount:        req.Amount,
		Currency:      payment.Currency,
		PaymentMethod: req.PaymentMethod,
		Reference:     payment.TransactionID,
		Details:       req.Details,
	})
	telemetry.GatewayCallLatency.WithLabelValues(string(gw.Name()), "initiate").Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.GatewayCallErrors.WithLabelValues(string(gw.Name()), "initiate").Inc()
	}
	return result, err
}

// persistInitiateFailure records the failure on the payment before returning
// it: FAILED when the provider rejected or was unavailable, ERROR when the
// call itself failed and the provider's verdict is unknown. The failed record
// is returned alongside the error so the caller still sees the transaction id.
func (s *Service) persistInitiateFailure(ctx context.Context, payment *domain.Payment, cause error) (*ports.PaymentResult, error) {
	payment.Status = initiateFailureStatus(cause)
	payment.FailureReason = cause.Error()
	payment.UpdatedAt = time.Now()
	if err := s.repo.SavePayment(ctx, payment); err != nil {
		s.log.Error("Failed to persist payment failure",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
	}

	telemetry.PaymentsTotal.WithLabelValues(string(payment.Gateway), payment.Status.String()).Inc()

	s.log.Error("Payment initiation failed",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway", string(payment.Gateway)),
		zap.Error(cause),
	)
	return s.toResult(payment, cause.Error(), nil), cause
}

// initiateFailureStatus separates a provider verdict from a transport fault.
// Timeouts, cancellations and network errors never reached a verdict, so the
// record ends in ERROR rather than FAILED.
func initiateFailureStatus(cause error) domain.PaymentStatus {
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		return domain.PaymentStatusError
	}
	var netErr net.Error
	if errors.As(cause, &netErr) {
		return domain.PaymentStatusError
	}
	if errors.Is(cause, domain.ErrGatewayUnavailable) || domain.IsGatewayError(cause) {
		return domain.PaymentStatusFailed
	}
	return domain.PaymentStatusError
}

// GetStatus reconciles the stored record against the gateway's current view
// and returns the canonical status. A record that never reached the provider
// is answered from storage alone.
func (s *Service) GetStatus(ctx context.Context, transactionID, gatewayName string) (*ports.PaymentResult, error) {
	unlock := s.lock(transactionID)
	defer unlock()

	payment, err := s.loadPayment(ctx, transactionID, gatewayName)
	if err != nil {
		return nil, err
	}

	gw, err := s.registry.Resolve(string(payment.Gateway))
	if err != nil {
		return nil, err
	}

	if payment.GatewayTransactionID == "" {
		return s.toResult(payment, "payment has no gateway transaction", nil), nil
	}

	result, changed, err := s.refreshFromGateway(ctx, gw, payment)
	if err != nil {
		return nil, err
	}

	message := "status unchanged"
	if changed {
		message = "status updated"
	}
	return s.toResult(payment, message, result.Payload), nil
}

// refreshFromGateway reconciles the record against the gateway's current
// view: it queries the provider, upgrades the stored provider id and applies
// the canonical transition, persisting and publishing when anything changed.
// A communication failure leaves the record untouched: it says nothing about
// the payment's real state. The caller must hold the record's lock.
func (s *Service) refreshFromGateway(ctx context.Context, gw ports.PaymentGateway, payment *domain.Payment) (*ports.GatewayResult, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	result, err := gw.QueryStatus(callCtx, payment.GatewayTransactionID)
	telemetry.GatewayCallLatency.WithLabelValues(string(gw.Name()), "query_status").Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.GatewayCallErrors.WithLabelValues(string(gw.Name()), "query_status").Inc()
		s.log.Error("Status query failed",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("gateway", string(payment.Gateway)),
			zap.Error(err),
		)
		return nil, false, err
	}

	changed := s.upgradeProviderID(payment, result.ProviderID)
	if s.transition(payment, result.Status, result.RawStatus) {
		changed = true
	}
	if changed {
		if err := s.repo.SavePayment(ctx, payment); err != nil {
			s.log.Error("Failed to update payment record",
				zap.String("transaction_id", payment.TransactionID),
				zap.Error(err),
			)
		}
		res := s.toResult(payment, "status updated", result.Payload)
		s.publish(subjectStatusChanged, res)
		s.cacheResult(ctx, res)
	}
	return result, changed, nil
}

// RefundPayment issues a full or partial refund. amount <= 0 refunds the
// full remaining balance. Precondition failures return before any provider
// call and leave the record untouched.
func (s *Service) RefundPayment(ctx context.Context, transactionID, gatewayName string, amount float64) (*ports.PaymentResult, error) {
	unlock := s.lock(transactionID)
	defer unlock()

	payment, err := s.loadPayment(ctx, transactionID, gatewayName)
	if err != nil {
		return nil, err
	}

	gw, err := s.registry.Resolve(string(payment.Gateway))
	if err != nil {
		return nil, err
	}

	// The stored view may be stale: the provider id can still be an
	// initiation-level identifier whose payment has since settled. Refresh
	// before judging refundability so such a record can be refunded directly.
	if s.needsRefundRefresh(payment) {
		if _, _, err := s.refreshFromGateway(ctx, gw, payment); err != nil {
			return nil, err
		}
	}

	if !payment.Status.IsRefundable() && payment.Status != domain.PaymentStatusRefundFailed {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrNotRefundable, payment.Status)
	}

	remaining := payment.RemainingRefundable()
	if amount > remaining {
		return nil, fmt.Errorf("%w: requested %.2f, refundable %.2f", domain.ErrInvalidRefundAmount, amount, remaining)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	outcome, err := gw.Refund(callCtx, payment.GatewayTransactionID, amount, remaining)
	telemetry.GatewayCallLatency.WithLabelValues(string(gw.Name()), "refund").Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.GatewayCallErrors.WithLabelValues(string(gw.Name()), "refund").Inc()
		s.log.Error("Refund failed",
			zap.String("transaction_id", transactionID),
			zap.String("gateway", string(payment.Gateway)),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// A timed-out call says nothing about whether the provider
			// processed the refund; leave the record untouched.
			return nil, err
		}
		if domain.IsGatewayError(err) {
			// Provider declined the refund: record the attempt.
			s.recordRefundOutcome(ctx, payment, gw.Name(), amount, domain.PaymentStatusRefundFailed, "", nil)
			res := s.toResult(payment, err.Error(), nil)
			s.publish(subjectRefundFailed, res)
			return res, err
		}
		// Precondition surfaced by the adapter (e.g. nothing refundable at
		// the provider): leave the record untouched.
		return nil, err
	}

	s.upgradeProviderID(payment, outcome.ProviderID)

	refunded := amount
	if refunded <= 0 {
		refunded = remaining
	}
	if outcome.Status == domain.PaymentStatusRefunded || outcome.Status == domain.PaymentStatusPartiallyRefunded {
		payment.RefundedAmount += refunded
	}
	s.recordRefundOutcome(ctx, payment, gw.Name(), refunded, outcome.Status, outcome.RefundID, outcome.Payload)

	res := s.toResult(payment, "refund processed", outcome.Payload)
	subject := subjectRefunded
	if outcome.Status == domain.PaymentStatusRefundFailed {
		subject = subjectRefundFailed
	}
	s.publish(subject, res)
	s.cacheResult(ctx, res)

	s.log.Info("Refund processed",
		zap.String("transaction_id", transactionID),
		zap.String("gateway_refund_id", outcome.RefundID),
		zap.Float64("amount", refunded),
		zap.String("status", payment.Status.String()),
	)
	return res, nil
}

// needsRefundRefresh reports whether the stored status blocks a refund while
// the gateway might already know better. Terminal and refundable states are
// settled; anything in between is worth one reconciling query.
func (s *Service) needsRefundRefresh(payment *domain.Payment) bool {
	if payment.GatewayTransactionID == "" {
		return false
	}
	if payment.Status.IsRefundable() || payment.Status == domain.PaymentStatusRefundFailed {
		return false
	}
	return !payment.Status.IsTerminal()
}

// recordRefundOutcome transitions the payment, persists it and appends the
// refund audit row.
func (s *Service) recordRefundOutcome(ctx context.Context, payment *domain.Payment, gateway domain.Gateway, amount float64, status domain.PaymentStatus, refundID string, payload map[string]interface{}) {
	s.transition(payment, status, "")
	if err := s.repo.SavePayment(ctx, payment); err != nil {
		s.log.Error("Failed to update payment record",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
	}

	refund := &domain.Refund{
		ID:              uuid.New().String(),
		PaymentID:       payment.TransactionID,
		GatewayRefundID: refundID,
		Amount:          amount,
		Status:          status,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.SaveRefund(ctx, refund); err != nil {
		s.log.Error("Failed to save refund record",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
	}

	telemetry.RefundsTotal.WithLabelValues(string(gateway), status.String()).Inc()
}

// loadPayment fetches the record and verifies it belongs to the requested
// gateway when one is named.
func (s *Service) loadPayment(ctx context.Context, transactionID, gatewayName string) (*domain.Payment, error) {
	payment, err := s.repo.GetPayment(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, transactionID)
	}
	if gatewayName != "" && !strings.EqualFold(gatewayName, string(payment.Gateway)) {
		return nil, fmt.Errorf("%w: payment belongs to %s", domain.ErrGatewayMismatch, payment.Gateway)
	}
	return payment, nil
}

// upgradeProviderID overwrites the stored provider id when the gateway has
// replaced an initiation identifier with a settlement identifier. Reports
// whether the record changed.
func (s *Service) upgradeProviderID(payment *domain.Payment, providerID string) bool {
	if providerID == "" || providerID == payment.GatewayTransactionID {
		return false
	}
	s.log.Info("Gateway transaction id upgraded",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("from", payment.GatewayTransactionID),
		zap.String("to", providerID),
	)
	payment.GatewayTransactionID = providerID
	payment.UpdatedAt = time.Now()
	return true
}

// transition applies a canonical status to the record. UNKNOWN never
// overwrites the stored status; the raw provider value is kept in metadata
// instead. An illegal transition is logged and ignored so a stale provider
// view cannot roll the record backwards. Reports whether the record changed.
func (s *Service) transition(payment *domain.Payment, to domain.PaymentStatus, raw string) bool {
	if to == domain.PaymentStatusUnknown {
		if payment.Metadata == nil {
			payment.Metadata = domain.JSONMap{}
		}
		payment.Metadata["last_raw_status"] = raw
		payment.UpdatedAt = time.Now()
		s.log.Warn("Unmapped gateway status",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("raw_status", raw),
		)
		return true
	}
	if to == payment.Status {
		return false
	}
	if !domain.CanTransition(payment.Status, to) {
		s.log.Warn("Ignoring illegal status transition",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("from", payment.Status.String()),
			zap.String("to", to.String()),
		)
		return false
	}
	payment.Status = to
	payment.UpdatedAt = time.Now()
	if to == domain.PaymentStatusSuccess && payment.CompletedAt == nil {
		now := time.Now()
		payment.CompletedAt = &now
	}
	return true
}

func (s *Service) toResult(payment *domain.Payment, message string, payload map[string]interface{}) *ports.PaymentResult {
	return &ports.PaymentResult{
		TransactionID:        payment.TransactionID,
		GatewayTransactionID: payment.GatewayTransactionID,
		Status:               payment.Status,
		Message:              message,
		Gateway:              payment.Gateway,
		Amount:               payment.Amount,
		Currency:             payment.Currency,
		Timestamp:            payment.UpdatedAt,
		GatewayResponse:      payload,
	}
}

// publish emits a lifecycle event. Delivery is best effort; a broker failure
// never fails the payment operation.
func (s *Service) publish(subject string, res *ports.PaymentResult) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		s.log.Error("Failed to marshal event", zap.Error(err))
		return
	}
	if err := s.queue.Publish(subject, data); err != nil {
		s.log.Error("Failed to publish event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// cacheResult keeps a short-lived snapshot of the last result per
// transaction for read-heavy status polling.
func (s *Service) cacheResult(ctx context.Context, res *ports.PaymentResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "payment:"+res.TransactionID, string(data), cacheTTL); err != nil {
		s.log.Debug("Failed to cache payment snapshot",
			zap.String("transaction_id", res.TransactionID),
			zap.Error(err),
		)
	}
}
