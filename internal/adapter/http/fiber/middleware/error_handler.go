package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/domain"
)

// ErrorHandler translates domain errors into HTTP status codes. Anything
// unrecognized is a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusCode(err)

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// StatusCode maps a domain error to its HTTP status. Handlers that render a
// body of their own use it directly so failure responses carry the same codes
// as the error handler.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedGateway),
		errors.Is(err, domain.ErrInvalidRefundAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrGatewayMismatch),
		errors.Is(err, domain.ErrNotRefundable):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNoGatewayConfigured),
		errors.Is(err, domain.ErrGatewayUnavailable):
		return fiber.StatusServiceUnavailable
	case domain.IsGatewayError(err):
		return fiber.StatusBadGateway
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
