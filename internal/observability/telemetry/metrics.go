package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas de negócio
	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multipay_payments_total",
		Help: "Total de pagamentos por gateway e status",
	}, []string{"gateway", "status"})

	RefundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multipay_refunds_total",
		Help: "Total de reembolsos por gateway e status",
	}, []string{"gateway", "status"})

	PaymentAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multipay_payment_amount_total",
		Help: "Montante total de pagamentos por moeda",
	}, []string{"gateway", "currency"})

	// Métricas de infraestrutura
	GatewayCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "multipay_gateway_call_latency_seconds",
		Help:    "Latência das chamadas aos provedores",
		Buckets: prometheus.DefBuckets,
	}, []string{"gateway", "operation"})

	GatewayCallErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multipay_gateway_call_errors_total",
		Help: "Total de falhas de comunicação com provedores",
	}, []string{"gateway", "operation"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "multipay_database_latency_seconds",
		Help:    "Latência de queries no banco",
		Buckets: prometheus.DefBuckets,
	})
)
