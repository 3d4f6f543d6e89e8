package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

const (
	razorpayOrderPrefix   = "order_"
	razorpayPaymentPrefix = "pay_"
)

var razorpayKeyPlaceholders = map[string]bool{
	"":                         true,
	"YOUR_RAZORPAY_KEY_ID":     true,
	"YOUR_RAZORPAY_KEY_SECRET": true,
}

// RazorpayGateway implements ports.PaymentGateway against Razorpay. Razorpay
// splits a payment into an order (created at initiation) and the payment
// attempts made against it, so the provider identifier starts as an order_ id
// and is upgraded to a pay_ id once an attempt settles.
type RazorpayGateway struct {
	client *razorpay.Client
	log    *zap.Logger
}

func NewRazorpayGateway(keyID, keySecret string, log *zap.Logger) ports.PaymentGateway {
	g := &RazorpayGateway{log: log}
	if razorpayKeyPlaceholders[keyID] || razorpayKeyPlaceholders[keySecret] {
		log.Warn("Razorpay credentials missing or placeholder, adapter registered as unavailable")
		return g
	}
	g.client = razorpay.NewClient(keyID, keySecret)
	log.Info("Razorpay client initialized")
	return g
}

func (g *RazorpayGateway) Name() domain.Gateway {
	return domain.GatewayRazorpay
}

func (g *RazorpayGateway) Initiate(ctx context.Context, params ports.InitiateParams) (*ports.GatewayResult, error) {
	if g.client == nil {
		return nil, domain.ErrGatewayUnavailable
	}

	orderReq := map[string]interface{}{
		"amount":   toMinorUnits(params.Amount),
		"currency": strings.ToUpper(params.Currency),
		"receipt":  params.Reference,
	}

	order, err := g.call(ctx, "initiate", func() (map[string]interface{}, error) {
		return g.client.Order.Create(orderReq, nil)
	})
	if err != nil {
		return nil, err
	}

	orderID, _ := order["id"].(string)
	rawStatus, _ := order["status"].(string)
	if orderID == "" {
		return nil, domain.NewGatewayError(domain.GatewayRazorpay, "initiate",
			errors.New("order response missing id"))
	}

	g.log.Info("Razorpay order created",
		zap.String("order_id", orderID),
		zap.String("razorpay_status", rawStatus),
	)

	// The order id is an intermediate identifier; the client completes the
	// payment out of band and a later status query upgrades it.
	return &ports.GatewayResult{
		ProviderID: orderID,
		Status:     mapRazorpayOrderStatus(rawStatus),
		RawStatus:  rawStatus,
		Payload: map[string]interface{}{
			"razorpay_order_id": orderID,
		},
	}, nil
}

func (g *RazorpayGateway) QueryStatus(ctx context.Context, providerID string) (*ports.GatewayResult, error) {
	if g.client == nil {
		return nil, domain.ErrGatewayUnavailable
	}

	if strings.HasPrefix(providerID, razorpayPaymentPrefix) {
		return g.queryPayment(ctx, providerID)
	}
	return g.queryOrder(ctx, providerID)
}

func (g *RazorpayGateway) queryPayment(ctx context.Context, paymentID string) (*ports.GatewayResult, error) {
	p, err := g.call(ctx, "query_status", func() (map[string]interface{}, error) {
		return g.client.Payment.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	rawStatus, _ := p["status"].(string)
	return &ports.GatewayResult{
		ProviderID: paymentID,
		Status:     mapRazorpayPaymentStatus(rawStatus),
		RawStatus:  rawStatus,
		Payload: map[string]interface{}{
			"razorpay_payment_id": paymentID,
		},
	}, nil
}

func (g *RazorpayGateway) queryOrder(ctx context.Context, orderID string) (*ports.GatewayResult, error) {
	resp, err := g.call(ctx, "query_status", func() (map[string]interface{}, error) {
		return g.client.Order.Payments(orderID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	attempt := selectMostAdvanced(razorpayItems(resp))
	if attempt == nil {
		// No attempts yet: fall back to the order's own status, which is the
		// best-known intermediate answer.
		order, err := g.call(ctx, "query_status", func() (map[string]interface{}, error) {
			return g.client.Order.Fetch(orderID, nil, nil)
		})
		if err != nil {
			return nil, err
		}
		rawStatus, _ := order["status"].(string)
		return &ports.GatewayResult{
			ProviderID: orderID,
			Status:     mapRazorpayOrderStatus(rawStatus),
			RawStatus:  rawStatus,
			Payload: map[string]interface{}{
				"razorpay_order_id": orderID,
			},
		}, nil
	}

	paymentID, _ := attempt["id"].(string)
	rawStatus, _ := attempt["status"].(string)

	g.log.Info("Razorpay settlement attempt resolved",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
		zap.String("razorpay_status", rawStatus),
	)

	return &ports.GatewayResult{
		ProviderID: paymentID,
		Status:     mapRazorpayPaymentStatus(rawStatus),
		RawStatus:  rawStatus,
		Payload: map[string]interface{}{
			"razorpay_order_id":   orderID,
			"razorpay_payment_id": paymentID,
		},
	}, nil
}

func (g *RazorpayGateway) Refund(ctx context.Context, providerID string, amount, remaining float64) (*ports.RefundOutcome, error) {
	if g.client == nil {
		return nil, domain.ErrGatewayUnavailable
	}
	if amount > remaining {
		return nil, domain.ErrInvalidRefundAmount
	}

	paymentID := providerID
	if !strings.HasPrefix(paymentID, razorpayPaymentPrefix) {
		// Still holding the order id: upgrade it to the settled payment id
		// before refunding.
		result, err := g.QueryStatus(ctx, providerID)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(result.ProviderID, razorpayPaymentPrefix) {
			return nil, fmt.Errorf("razorpay order %s has no settled payment: %w",
				providerID, domain.ErrNotRefundable)
		}
		if !result.Status.IsRefundable() {
			return nil, fmt.Errorf("razorpay payment %s is %s: %w",
				result.ProviderID, result.RawStatus, domain.ErrNotRefundable)
		}
		paymentID = result.ProviderID
	}

	toRefund := amount
	if toRefund <= 0 {
		toRefund = remaining
	}

	r, err := g.call(ctx, "refund", func() (map[string]interface{}, error) {
		return g.client.Payment.Refund(paymentID, int(toMinorUnits(toRefund)), nil, nil)
	})
	if err != nil {
		return nil, err
	}

	refundID, _ := r["id"].(string)
	rawStatus, _ := r["status"].(string)

	g.log.Info("Razorpay refund created",
		zap.String("payment_id", paymentID),
		zap.String("refund_id", refundID),
		zap.String("razorpay_status", rawStatus),
	)

	return &ports.RefundOutcome{
		RefundID:   refundID,
		ProviderID: paymentID,
		Status:     mapRazorpayRefundStatus(rawStatus, toRefund, remaining),
		RawStatus:  rawStatus,
		Payload: map[string]interface{}{
			"razorpay_payment_id": paymentID,
			"razorpay_refund_id":  refundID,
		},
	}, nil
}

// call runs a Razorpay SDK call bounded by ctx. The SDK has no context
// support, so the call runs in its own goroutine and the result is dropped if
// the context expires first.
func (g *RazorpayGateway) call(ctx context.Context, op string, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	type outcome struct {
		resp map[string]interface{}
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		resp, err := fn()
		ch <- outcome{resp, err}
	}()

	select {
	case <-ctx.Done():
		return nil, domain.NewGatewayError(domain.GatewayRazorpay, op, ctx.Err())
	case out := <-ch:
		if out.err != nil {
			g.log.Error("Razorpay call failed", zap.String("op", op), zap.Error(out.err))
			return nil, domain.NewGatewayError(domain.GatewayRazorpay, op, out.err)
		}
		return out.resp, nil
	}
}

func razorpayItems(resp map[string]interface{}) []map[string]interface{} {
	raw, _ := resp["items"].([]interface{})
	items := make([]map[string]interface{}, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}

// razorpayAttemptRank orders settlement attempts: captured beats authorized
// beats failed/attempted beats created.
func razorpayAttemptRank(status string) int {
	switch strings.ToLower(status) {
	case "captured", "refunded":
		return 3
	case "authorized":
		return 2
	case "failed":
		return 1
	default: // created and anything else
		return 0
	}
}

// selectMostAdvanced picks the single most advanced attempt among all
// payments made against one order, breaking ties by the most recent
// created_at.
func selectMostAdvanced(items []map[string]interface{}) map[string]interface{} {
	var best map[string]interface{}
	bestRank, bestAt := -1, int64(-1)
	for _, item := range items {
		status, _ := item["status"].(string)
		rank := razorpayAttemptRank(status)
		at := razorpayCreatedAt(item)
		if rank > bestRank || (rank == bestRank && at > bestAt) {
			best, bestRank, bestAt = item, rank, at
		}
	}
	return best
}

func razorpayCreatedAt(item map[string]interface{}) int64 {
	switch v := item["created_at"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// mapRazorpayPaymentStatus translates Razorpay's payment vocabulary.
// Unmapped values fall through to UNKNOWN.
func mapRazorpayPaymentStatus(status string) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "created":
		return domain.PaymentStatusPending
	case "authorized":
		return domain.PaymentStatusAuthorized
	case "captured":
		return domain.PaymentStatusSuccess
	case "failed":
		return domain.PaymentStatusFailed
	case "refunded":
		return domain.PaymentStatusRefunded
	default:
		return domain.PaymentStatusUnknown
	}
}

// mapRazorpayOrderStatus translates the order-level vocabulary used before
// any payment attempt settles.
func mapRazorpayOrderStatus(status string) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "created":
		return domain.PaymentStatusPendingUserAction
	case "attempted":
		return domain.PaymentStatusPending
	case "paid":
		return domain.PaymentStatusSuccess
	default:
		return domain.PaymentStatusUnknown
	}
}

func mapRazorpayRefundStatus(status string, amount, remaining float64) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "processed", "pending", "created":
		if amount > 0 && amount < remaining {
			return domain.PaymentStatusPartiallyRefunded
		}
		return domain.PaymentStatusRefunded
	case "failed":
		return domain.PaymentStatusRefundFailed
	default:
		return domain.PaymentStatusUnknown
	}
}
