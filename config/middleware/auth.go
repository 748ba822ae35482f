package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
)

const claimsKey = "user"

// AuthMiddleware requires a valid bearer token and stores its claims in the
// request locals.
func AuthMiddleware(maker *paseto.Maker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Unauthorized("Not authorized, no token provided")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "") {
			return apperror.Unauthorized("Authorization header format must be Bearer <token>")
		}

		claims, err := maker.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, paseto.ErrExpiredToken) {
				return apperror.Unauthorized("Token has expired")
			}
			return apperror.Unauthorized("Not authorized, token failed")
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}
