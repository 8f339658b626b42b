package middleware

import (
	"context"
	"errors"
	"time"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Timeout bounds the request's user context. Usecases pass it down to the
// database, so an expired deadline rolls back any open transaction.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ErrorHandler renders every error as {"success": false, "message", "code"}.
// Anything that is not an AppError or a fiber.Error is logged and hidden
// behind a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperror.AppError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ae):
	case errors.As(err, &fe):
		ae = &apperror.AppError{Code: codeForStatus(fe.Code), Message: fe.Message, Status: fe.Code}
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request timed out", zap.String("path", c.Path()), zap.Error(err))
		ae = &apperror.AppError{Code: "TIMEOUT", Message: "Request timed out", Status: fiber.StatusServiceUnavailable}
	default:
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err),
		)
		ae = apperror.Internal()
	}

	status := ae.Status
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": ae.Message,
		"code":    ae.Code,
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperror.CodeValidation
	case fiber.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperror.CodeForbidden
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return apperror.CodeInternal
	}
}
