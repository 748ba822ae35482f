package handlers

import (
	"context"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	util "employee-management/pkg/utils"
	"employee-management/services"
)

const (
	notificationNotFound    = "Notification not found"
	notificationPageDefault = 20
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetNotifications godoc
// @Summary List Notifications
// @Description Caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse[models.Notification]
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}
	page, limit := util.ParsePagination(c, notificationPageDefault)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	items, total, err := h.service.List(ctx, claims.UserID, page, limit)
	if err != nil {
		return apperror.Internal("Failed to fetch notifications", err)
	}
	return sendPage(c, items, total, page, limit)
}

// GetUnreadCount godoc
// @Summary Unread Count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	count, err := h.service.UnreadCount(ctx, claims.UserID)
	if err != nil {
		return apperror.Internal("Failed to count notifications", err)
	}
	return c.JSON(fiber.Map{"success": true, "count": count})
}

// MarkAsRead godoc
// @Summary Mark Notification Read
// @Description Marking an already read notification succeeds without changes
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.ItemResponse[models.Notification]
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, notificationNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	n, err := h.service.MarkAsRead(ctx, id, claims.UserID)
	if err != nil {
		return storeError(err, notificationNotFound, "Failed to update notification")
	}
	return sendData(c, fiber.StatusOK, n)
}

// MarkAllAsRead godoc
// @Summary Mark All Read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	modified, err := h.service.MarkAllAsRead(ctx, claims.UserID)
	if err != nil {
		return apperror.Internal("Failed to update notifications", err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "All notifications marked as read",
		"modifiedCount": modified,
	})
}

// DeleteNotification godoc
// @Summary Delete Notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, notificationNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.service.Delete(ctx, id, claims.UserID); err != nil {
		return storeError(err, notificationNotFound, "Failed to delete notification")
	}
	return sendMessage(c, "Notification deleted")
}

// GetPreferences godoc
// @Summary Notification Preferences
// @Description Created with defaults on first read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ItemResponse[models.NotificationPreferenceView]
// @Router /notifications/preferences [get]
func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	pref, err := h.service.GetPreferences(ctx, claims.UserID)
	if err != nil {
		return apperror.Internal("Failed to load preferences", err)
	}
	return sendData(c, fiber.StatusOK, pref)
}

// UpdatePreferences godoc
// @Summary Update Notification Preferences
// @Description Only supplied fields change
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param preferences body models.NotificationPreferenceUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.NotificationPreferenceView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	var payload models.NotificationPreferenceUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	pref, err := h.service.UpdatePreferences(ctx, claims.UserID, payload)
	if err != nil {
		return apperror.Internal("Failed to update preferences", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Preferences updated",
		"data":    pref,
	})
}

// SendTestEmail godoc
// @Summary Send Test Email
// @Description Sends to the caller. Managers may name another address.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param target body models.TestEmailPayload false "Recipient"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /notifications/test-email [post]
func (h *NotificationHandler) SendTestEmail(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	to := claims.Email
	if len(c.Body()) > 0 {
		var payload models.TestEmailPayload
		if err := parseBody(c, &payload); err != nil {
			return err
		}
		if !strings.EqualFold(payload.Email, claims.Email) && !slices.Contains(middleware.Managers, claims.Role) {
			return apperror.Forbidden("Only managers may send test emails to other addresses")
		}
		to = payload.Email
	}

	ctx, cancel := notifyContext(c)
	defer cancel()

	result := h.service.SendTestEmail(ctx, to)
	if !result.Success {
		logrus.WithField("error", result.Error).Warn("test email failed")
		return apperror.Validation("Failed to send test email", nil)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Test email sent successfully",
		"messageId": result.MessageID,
	})
}
