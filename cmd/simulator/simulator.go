package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// SimulatorConfig holds simulator configuration
type SimulatorConfig struct {
	ServerURL    string
	Gateway      string
	Currency     string
	Amount       float64
	Count        int
	Refund       bool
	PollInterval time.Duration
	PollMax      int
}

// Simulator drives the payment API end to end: initiate, poll status and
// optionally refund. Used for smoke-testing a deployment with test-mode
// provider credentials.
type Simulator struct {
	config *SimulatorConfig
	client *fasthttp.Client
	log    *zap.Logger
}

type paymentResponse struct {
	TransactionID        string  `json:"transaction_id"`
	GatewayTransactionID string  `json:"gateway_transaction_id"`
	Status               string  `json:"status"`
	Gateway              string  `json:"gateway"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
}

func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		log: log,
	}
}

func (s *Simulator) Run() error {
	var failures int
	for i := 0; i < s.config.Count; i++ {
		if err := s.runOne(i); err != nil {
			s.log.Error("Payment run failed", zap.Int("run", i), zap.Error(err))
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d runs failed", failures, s.config.Count)
	}
	return nil
}

func (s *Simulator) runOne(run int) error {
	payment, err := s.initiate()
	if err != nil {
		return fmt.Errorf("initiate: %w", err)
	}
	s.log.Info("Payment created",
		zap.Int("run", run),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("status", payment.Status),
	)

	for poll := 0; poll < s.config.PollMax; poll++ {
		time.Sleep(s.config.PollInterval)

		payment, err = s.status(payment.TransactionID)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		s.log.Info("Payment status",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("status", payment.Status),
		)
		if payment.Status == "SUCCESS" || payment.Status == "FAILED" ||
			payment.Status == "CANCELED" || payment.Status == "ERROR" {
			break
		}
	}

	if s.config.Refund && payment.Status == "SUCCESS" {
		refunded, err := s.refund(payment.TransactionID)
		if err != nil {
			return fmt.Errorf("refund: %w", err)
		}
		s.log.Info("Payment refunded",
			zap.String("transaction_id", refunded.TransactionID),
			zap.String("status", refunded.Status),
		)
	}
	return nil
}

func (s *Simulator) initiate() (*paymentResponse, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"amount":   s.config.Amount,
		"currency": s.config.Currency,
		"gateway":  s.config.Gateway,
	})
	return s.do(fasthttp.MethodPost, s.config.ServerURL+"/api/v1/payments", body)
}

func (s *Simulator) status(transactionID string) (*paymentResponse, error) {
	url := fmt.Sprintf("%s/api/v1/payments/%s/status", s.config.ServerURL, transactionID)
	return s.do(fasthttp.MethodGet, url, nil)
}

func (s *Simulator) refund(transactionID string) (*paymentResponse, error) {
	url := fmt.Sprintf("%s/api/v1/payments/%s/refund", s.config.ServerURL, transactionID)
	return s.do(fasthttp.MethodPost, url, []byte(`{}`))
}

func (s *Simulator) do(method, url string, body []byte) (*paymentResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := s.client.Do(req, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("%s %s: HTTP %d: %s", method, url, resp.StatusCode(), resp.Body())
	}

	var payment paymentResponse
	if err := json.Unmarshal(resp.Body(), &payment); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payment, nil
}
