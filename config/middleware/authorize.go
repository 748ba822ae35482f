package middleware

import (
	"github.com/gofiber/fiber/v2"

	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
)

// Role sets shared by the route handlers.
var (
	Managers   = []string{models.RoleAdmin, models.RoleHRManager}
	AdminsOnly = []string{models.RoleAdmin}
)

// Authorize is called at the top of a handler. With no roles any signed-in
// caller passes; otherwise the caller's role must be one of roles.
func Authorize(c *fiber.Ctx, roles ...string) (*paseto.Claims, error) {
	claims, ok := c.Locals(claimsKey).(*paseto.Claims)
	if !ok || claims == nil {
		return nil, apperror.Unauthorized("Not authorized")
	}
	if len(roles) == 0 {
		return claims, nil
	}
	for _, r := range roles {
		if claims.Role == r {
			return claims, nil
		}
	}
	return nil, apperror.Forbidden("User role " + claims.Role + " is not authorized to access this resource")
}
