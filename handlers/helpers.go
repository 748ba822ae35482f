package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/pkg/apperror"
	util "employee-management/pkg/utils"
	"employee-management/repository"
)

const (
	dbTimeout     = 5 * time.Second
	notifyTimeout = 15 * time.Second
)

// notifyContext bounds the best-effort notification work that follows a
// successful write.
func notifyContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), notifyTimeout)
}

// paramID reads :id. A malformed id cannot name a record, so it is reported
// as not found.
func paramID(c *fiber.Ctx, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(notFound)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid request body", nil)
	}
	if errs := util.ValidateStruct(out); errs != nil {
		return apperror.Validation("Validation failed", errs)
	}
	return nil
}

// storeError maps repository failures onto the client-facing taxonomy.
func storeError(err error, notFound, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict("A record with the same unique value already exists")
	}
	return apperror.Internal(action, err)
}

func sendData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func sendList[T any](c *fiber.Ctx, items []T) error {
	return c.JSON(fiber.Map{"success": true, "count": len(items), "data": items})
}

func sendPage[T any](c *fiber.Ctx, items []T, total, page, limit int64) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func sendMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": true, "message": message})
}
