package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/multipay/internal/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service ports.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

type InitiatePaymentRequest struct {
	Amount        float64                `json:"amount"`
	Currency      string                 `json:"currency"`
	PaymentMethod string                 `json:"payment_method"`
	Gateway       string                 `json:"gateway"` // Optional, default gateway when empty
	Details       map[string]interface{} `json:"details"`
}

type RefundRequest struct {
	Amount float64 `json:"amount"` // Optional, <= 0 means full remaining refund
}

func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
	}
	if strings.TrimSpace(req.Currency) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Currency is required"})
	}

	result, err := h.service.InitiatePayment(c.Context(), &ports.InitiateRequest{
		Amount:           req.Amount,
		Currency:         req.Currency,
		PaymentMethod:    req.PaymentMethod,
		PreferredGateway: req.Gateway,
		Details:          req.Details,
	})
	if err != nil {
		if result != nil {
			// Failure outcome for a created record: surface the persisted
			// result so the client keeps the transaction id.
			return c.Status(middleware.StatusCode(err)).JSON(result)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	gateway := c.Query("gateway")

	result, err := h.service.GetStatus(c.Context(), id, gateway)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	id := c.Params("id")
	gateway := c.Query("gateway")

	var req RefundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	result, err := h.service.RefundPayment(c.Context(), id, gateway, req.Amount)
	if err != nil {
		if result != nil {
			return c.Status(middleware.StatusCode(err)).JSON(result)
		}
		return err
	}
	return c.JSON(result)
}

// Webhook acknowledges provider callbacks. Reconciliation happens through
// status queries; the payload is accepted and logged only.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	gateway := c.Params("gateway")
	h.log.Info("Webhook received",
		zap.String("gateway", gateway),
		zap.Int("payload_bytes", len(c.Body())),
	)
	return c.SendStatus(fiber.StatusAccepted)
}
