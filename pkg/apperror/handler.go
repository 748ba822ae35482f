package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const internalMessage = "Internal server error"

// Handler is the fiber ErrorHandler. Every failure leaves as
// {success:false, message} and internal causes stay in the log.
func Handler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := internalMessage
	var details any

	var ae *Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		status = ae.Kind.Status()
		details = ae.Details
		if ae.Kind == KindInternal {
			logEntry(c).WithError(err).Error("request failed")
		} else {
			message = ae.Message
		}
	case errors.As(err, &fe):
		status = fe.Code
		message = fe.Message
		if status >= fiber.StatusInternalServerError {
			logEntry(c).WithError(err).Error("request failed")
			message = internalMessage
		}
	default:
		logEntry(c).WithError(err).Error("unhandled error")
	}

	body := fiber.Map{"success": false, "message": message}
	if details != nil {
		body["errors"] = details
	}
	return c.Status(status).JSON(body)
}

func logEntry(c *fiber.Ctx) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.Locals("requestid"),
	})
}
