package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"employee-management/models"
)

// HealthCheck godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
	})
}
