package payment

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

// stripeKeyPlaceholders are the values shipped in sample configs. An adapter
// constructed with one of these stays permanently unavailable instead of
// failing startup.
var stripeKeyPlaceholders = map[string]bool{
	"":                               true,
	"sk_test_YOUR_STRIPE_SECRET_KEY": true,
	"YOUR_STRIPE_SECRET_KEY":         true,
}

// StripeGateway implements ports.PaymentGateway against Stripe
// PaymentIntents.
type StripeGateway struct {
	available bool
	log       *zap.Logger
}

func NewStripeGateway(apiKey string, log *zap.Logger) ports.PaymentGateway {
	g := &StripeGateway{log: log}
	if stripeKeyPlaceholders[apiKey] {
		log.Warn("Stripe API key missing or placeholder, adapter registered as unavailable")
		return g
	}
	stripe.Key = apiKey
	g.available = true
	log.Info("Stripe client initialized")
	return g
}

func (g *StripeGateway) Name() domain.Gateway {
	return domain.GatewayStripe
}

func (g *StripeGateway) Initiate(ctx context.Context, params ports.InitiateParams) (*ports.GatewayResult, error) {
	if !g.available {
		return nil, domain.ErrGatewayUnavailable
	}

	// Stripe expects lowercase currency and an integer minor-unit amount.
	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(params.Amount)),
		Currency: stripe.String(strings.ToLower(params.Currency)),
	}
	piParams.Context = ctx

	if pm, ok := params.Details["payment_method_id"].(string); ok && pm != "" {
		piParams.PaymentMethod = stripe.String(pm)
		piParams.Confirm = stripe.Bool(true)
	} else {
		// No payment method yet: create the intent and let the client
		// confirm it with the client_secret.
		piParams.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		g.log.Error("Stripe payment intent creation failed", zap.Error(err))
		return nil, domain.NewGatewayError(domain.GatewayStripe, "initiate", err)
	}

	g.log.Info("Stripe payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("stripe_status", string(pi.Status)),
	)

	return stripeResult(pi), nil
}

func (g *StripeGateway) QueryStatus(ctx context.Context, providerID string) (*ports.GatewayResult, error) {
	if !g.available {
		return nil, domain.ErrGatewayUnavailable
	}

	piParams := &stripe.PaymentIntentParams{}
	piParams.Context = ctx

	pi, err := paymentintent.Get(providerID, piParams)
	if err != nil {
		g.log.Error("Stripe status fetch failed",
			zap.String("payment_intent_id", providerID),
			zap.Error(err),
		)
		return nil, domain.NewGatewayError(domain.GatewayStripe, "query_status", err)
	}

	return stripeResult(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, providerID string, amount, remaining float64) (*ports.RefundOutcome, error) {
	if !g.available {
		return nil, domain.ErrGatewayUnavailable
	}
	if amount > remaining {
		return nil, domain.ErrInvalidRefundAmount
	}

	refParams := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerID),
	}
	refParams.Context = ctx
	if amount > 0 {
		refParams.Amount = stripe.Int64(toMinorUnits(amount))
	} // absent amount means Stripe refunds the full remaining balance

	r, err := refund.New(refParams)
	if err != nil {
		g.log.Error("Stripe refund failed",
			zap.String("payment_intent_id", providerID),
			zap.Error(err),
		)
		return nil, domain.NewGatewayError(domain.GatewayStripe, "refund", err)
	}

	g.log.Info("Stripe refund created",
		zap.String("refund_id", r.ID),
		zap.String("stripe_status", string(r.Status)),
	)

	return &ports.RefundOutcome{
		RefundID:   r.ID,
		ProviderID: providerID,
		Status:     mapStripeRefundStatus(string(r.Status), amount, remaining),
		RawStatus:  string(r.Status),
		Payload: map[string]interface{}{
			"stripe_refund_id": r.ID,
		},
	}, nil
}

func stripeResult(pi *stripe.PaymentIntent) *ports.GatewayResult {
	payload := map[string]interface{}{
		"stripe_payment_intent_id": pi.ID,
	}
	if pi.ClientSecret != "" {
		payload["stripe_client_secret"] = pi.ClientSecret
	}
	return &ports.GatewayResult{
		ProviderID: pi.ID,
		Status:     mapStripeIntentStatus(string(pi.Status)),
		RawStatus:  string(pi.Status),
		Payload:    payload,
	}
}

// mapStripeIntentStatus translates Stripe's PaymentIntent vocabulary into the
// canonical model. Unmapped values fall through to UNKNOWN.
func mapStripeIntentStatus(status string) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "requires_payment_method", "requires_confirmation", "requires_action":
		return domain.PaymentStatusPendingUserAction
	case "processing":
		return domain.PaymentStatusPending
	case "requires_capture":
		return domain.PaymentStatusAuthorized
	case "succeeded":
		return domain.PaymentStatusSuccess
	case "canceled":
		return domain.PaymentStatusCanceled
	default:
		return domain.PaymentStatusUnknown
	}
}

// mapStripeRefundStatus translates a Stripe refund status, deciding between
// full and partial refund from the requested amount and the refundable
// balance it was issued against.
func mapStripeRefundStatus(status string, amount, remaining float64) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "succeeded", "pending":
		if amount > 0 && amount < remaining {
			return domain.PaymentStatusPartiallyRefunded
		}
		return domain.PaymentStatusRefunded
	case "failed", "canceled":
		return domain.PaymentStatusRefundFailed
	default:
		return domain.PaymentStatusUnknown
	}
}

// toMinorUnits converts a decimal amount to the provider's integer minor
// units (cents, paise).
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
