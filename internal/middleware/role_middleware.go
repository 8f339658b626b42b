package middleware

import (
	"geo-attendance-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// Role lets the request through only for the listed roles. It must run
// after Auth.
func Role(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return apperror.Unauthorized("Missing identity")
		}

		for _, role := range allowedRoles {
			if role == id.Role {
				return c.Next()
			}
		}

		return apperror.Forbidden("Insufficient role")
	}
}
