package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/repository"
	"employee-management/services"
)

const leaveNotFound = "Leave request not found"

type LeaveHandler struct {
	repo     repository.LeaveRepository
	notifier *services.NotificationService
	now      func() time.Time
}

func NewLeaveHandler(repo repository.LeaveRepository, notifier *services.NotificationService) *LeaveHandler {
	return &LeaveHandler{repo: repo, notifier: notifier, now: time.Now}
}

// CreateLeave godoc
// @Summary Submit Leave Request
// @Description Any signed-in user may submit; the department manager is notified
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leave body models.LeaveCreatePayload true "Leave request"
// @Success 201 {object} models.ItemResponse[models.LeaveView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /leaves [post]
func (h *LeaveHandler) CreateLeave(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	var payload models.LeaveCreatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	leave := payload.ToLeave()
	if leave.EndDate.Before(leave.StartDate) {
		return apperror.Validation("End date must not be before start date", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.CreateLeave(ctx, leave); err != nil {
		return apperror.Internal("Failed to submit leave request", err)
	}
	view, err := h.repo.GetLeaveByID(ctx, leave.ID)
	if err != nil {
		return storeError(err, leaveNotFound, "Failed to load leave request")
	}

	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.LeaveSubmitted(nctx, leave)

	return sendData(c, fiber.StatusCreated, view)
}

// GetAllLeaves godoc
// @Summary List Leave Requests
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ListResponse[models.LeaveView]
// @Router /leaves [get]
func (h *LeaveHandler) GetAllLeaves(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	leaves, err := h.repo.GetAllLeaves(ctx)
	if err != nil {
		return apperror.Internal("Failed to fetch leave requests", err)
	}
	return sendList(c, leaves)
}

// GetLeaveByID godoc
// @Summary Get Leave Request
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} models.ItemResponse[models.LeaveView]
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id} [get]
func (h *LeaveHandler) GetLeaveByID(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, leaveNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	leave, err := h.repo.GetLeaveByID(ctx, id)
	if err != nil {
		return storeError(err, leaveNotFound, "Failed to fetch leave request")
	}
	return sendData(c, fiber.StatusOK, leave)
}

// UpdateLeave godoc
// @Summary Update Leave Request
// @Description Status cannot be changed here; use approve or reject
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param leave body models.LeaveUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.LeaveView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id} [put]
func (h *LeaveHandler) UpdateLeave(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}
	id, err := paramID(c, leaveNotFound)
	if err != nil {
		return err
	}

	var payload models.LeaveUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	set := payload.Updates()
	if len(set) == 0 {
		return apperror.Validation("No fields to update", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if payload.StartDate != nil || payload.EndDate != nil {
		current, err := h.repo.GetLeaveByID(ctx, id)
		if err != nil {
			return storeError(err, leaveNotFound, "Failed to fetch leave request")
		}
		start, end := payload.MergeDates(current.Leave)
		if end.Before(start) {
			return apperror.Validation("End date must not be before start date", nil)
		}
		if payload.Days == nil {
			set["days"] = models.LeaveDays(start, end)
		}
	}

	leave, err := h.repo.UpdateLeave(ctx, id, set)
	if err != nil {
		return storeError(err, leaveNotFound, "Failed to update leave request")
	}
	return sendData(c, fiber.StatusOK, leave)
}

// DeleteLeave godoc
// @Summary Delete Leave Request
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id} [delete]
func (h *LeaveHandler) DeleteLeave(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.AdminsOnly...); err != nil {
		return err
	}
	id, err := paramID(c, leaveNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.DeleteLeave(ctx, id); err != nil {
		return storeError(err, leaveNotFound, "Failed to delete leave request")
	}
	return sendMessage(c, "Leave request deleted successfully")
}

// ApproveLeave godoc
// @Summary Approve Leave Request
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} models.ItemResponse[models.LeaveView]
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id}/approve [post]
func (h *LeaveHandler) ApproveLeave(c *fiber.Ctx) error {
	return h.decide(c, models.LeaveApproved)
}

// RejectLeave godoc
// @Summary Reject Leave Request
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param reason body models.LeaveRejectPayload false "Optional rejection reason"
// @Success 200 {object} models.ItemResponse[models.LeaveView]
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id}/reject [post]
func (h *LeaveHandler) RejectLeave(c *fiber.Ctx) error {
	return h.decide(c, models.LeaveRejected)
}

// decide writes the decision without looking at the current status, so a
// later approve or reject simply overwrites an earlier one.
func (h *LeaveHandler) decide(c *fiber.Ctx, status string) error {
	claims, err := middleware.Authorize(c, middleware.Managers...)
	if err != nil {
		return err
	}
	id, err := paramID(c, leaveNotFound)
	if err != nil {
		return err
	}

	decision := models.LeaveDecision{
		Status:     status,
		ApprovedBy: claims.UserID,
		DecidedAt:  h.now().UTC(),
	}
	if status == models.LeaveRejected && len(c.Body()) > 0 {
		var payload models.LeaveRejectPayload
		if err := parseBody(c, &payload); err != nil {
			return err
		}
		decision.RejectionReason = payload.RejectionReason
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	leave, err := h.repo.UpdateLeave(ctx, id, decision.Updates())
	if err != nil {
		return storeError(err, leaveNotFound, "Failed to update leave status")
	}

	approverName := claims.Email
	if leave.ApproverRef != nil {
		approverName = leave.ApproverRef.FullName()
	}
	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.LeaveDecided(nctx, leave, approverName)

	return sendData(c, fiber.StatusOK, leave)
}
