package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/repository"
	"employee-management/services"
)

const attendanceNotFound = "Attendance record not found"

type AttendanceHandler struct {
	repo     repository.AttendanceRepository
	notifier *services.NotificationService
}

func NewAttendanceHandler(repo repository.AttendanceRepository, notifier *services.NotificationService) *AttendanceHandler {
	return &AttendanceHandler{repo: repo, notifier: notifier}
}

// CreateAttendance godoc
// @Summary Record Attendance
// @Description Absent and late records alert the employee
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendance body models.AttendanceCreatePayload true "Attendance record"
// @Success 201 {object} models.ItemResponse[models.AttendanceView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /attendance [post]
func (h *AttendanceHandler) CreateAttendance(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}

	var payload models.AttendanceCreatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	attendance := payload.ToAttendance()

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.CreateAttendance(ctx, attendance); err != nil {
		return apperror.Internal("Failed to record attendance", err)
	}
	view, err := h.repo.GetAttendanceByID(ctx, attendance.ID)
	if err != nil {
		return storeError(err, attendanceNotFound, "Failed to load attendance")
	}

	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.AttendanceFlagged(nctx, attendance)

	return sendData(c, fiber.StatusCreated, view)
}

// GetAllAttendance godoc
// @Summary List Attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ListResponse[models.AttendanceView]
// @Router /attendance [get]
func (h *AttendanceHandler) GetAllAttendance(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	records, err := h.repo.GetAllAttendance(ctx)
	if err != nil {
		return apperror.Internal("Failed to fetch attendance", err)
	}
	return sendList(c, records)
}

// GetAttendanceByID godoc
// @Summary Get Attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 200 {object} models.ItemResponse[models.AttendanceView]
// @Failure 404 {object} models.ErrorResponse
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) GetAttendanceByID(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, attendanceNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	record, err := h.repo.GetAttendanceByID(ctx, id)
	if err != nil {
		return storeError(err, attendanceNotFound, "Failed to fetch attendance")
	}
	return sendData(c, fiber.StatusOK, record)
}

// UpdateAttendance godoc
// @Summary Update Attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Param attendance body models.AttendanceUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.AttendanceView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) UpdateAttendance(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}
	id, err := paramID(c, attendanceNotFound)
	if err != nil {
		return err
	}

	var payload models.AttendanceUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	set := payload.Updates()
	if len(set) == 0 {
		return apperror.Validation("No fields to update", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	record, err := h.repo.UpdateAttendance(ctx, id, set)
	if err != nil {
		return storeError(err, attendanceNotFound, "Failed to update attendance")
	}

	if payload.Status != nil {
		nctx, ncancel := notifyContext(c)
		defer ncancel()
		h.notifier.AttendanceFlagged(nctx, &record.Attendance)
	}
	return sendData(c, fiber.StatusOK, record)
}

// DeleteAttendance godoc
// @Summary Delete Attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) DeleteAttendance(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.AdminsOnly...); err != nil {
		return err
	}
	id, err := paramID(c, attendanceNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.DeleteAttendance(ctx, id); err != nil {
		return storeError(err, attendanceNotFound, "Failed to delete attendance")
	}
	return sendMessage(c, "Attendance record deleted successfully")
}
