package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/repository"
	"employee-management/services"
)

const payrollNotFound = "Payroll record not found"

type PayrollHandler struct {
	repo     repository.PayrollRepository
	notifier *services.NotificationService
}

func NewPayrollHandler(repo repository.PayrollRepository, notifier *services.NotificationService) *PayrollHandler {
	return &PayrollHandler{repo: repo, notifier: notifier}
}

// CreatePayroll godoc
// @Summary Create Payroll
// @Description Stores a payroll record as supplied and notifies the employee
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payroll body models.PayrollCreatePayload true "Payroll record"
// @Success 201 {object} models.ItemResponse[models.PayrollView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /payroll [post]
func (h *PayrollHandler) CreatePayroll(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}

	var payload models.PayrollCreatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	payroll := payload.ToPayroll()

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.CreatePayroll(ctx, payroll); err != nil {
		return apperror.Internal("Failed to create payroll", err)
	}
	view, err := h.repo.GetPayrollByID(ctx, payroll.ID)
	if err != nil {
		return storeError(err, payrollNotFound, "Failed to load payroll")
	}

	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.PayrollIssued(nctx, payroll)

	return sendData(c, fiber.StatusCreated, view)
}

// GetAllPayrolls godoc
// @Summary List Payroll
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ListResponse[models.PayrollView]
// @Router /payroll [get]
func (h *PayrollHandler) GetAllPayrolls(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	payrolls, err := h.repo.GetAllPayrolls(ctx)
	if err != nil {
		return apperror.Internal("Failed to fetch payroll", err)
	}
	return sendList(c, payrolls)
}

// GetPayrollByID godoc
// @Summary Get Payroll
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Success 200 {object} models.ItemResponse[models.PayrollView]
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id} [get]
func (h *PayrollHandler) GetPayrollByID(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, payrollNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	payroll, err := h.repo.GetPayrollByID(ctx, id)
	if err != nil {
		return storeError(err, payrollNotFound, "Failed to fetch payroll")
	}
	return sendData(c, fiber.StatusOK, payroll)
}

// UpdatePayroll godoc
// @Summary Update Payroll
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Param payroll body models.PayrollUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.PayrollView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id} [put]
func (h *PayrollHandler) UpdatePayroll(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}
	id, err := paramID(c, payrollNotFound)
	if err != nil {
		return err
	}

	var payload models.PayrollUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	set := payload.Updates()
	if len(set) == 0 {
		return apperror.Validation("No fields to update", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	payroll, err := h.repo.UpdatePayroll(ctx, id, set)
	if err != nil {
		return storeError(err, payrollNotFound, "Failed to update payroll")
	}
	return sendData(c, fiber.StatusOK, payroll)
}

// DeletePayroll godoc
// @Summary Delete Payroll
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id} [delete]
func (h *PayrollHandler) DeletePayroll(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.AdminsOnly...); err != nil {
		return err
	}
	id, err := paramID(c, payrollNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.DeletePayroll(ctx, id); err != nil {
		return storeError(err, payrollNotFound, "Failed to delete payroll")
	}
	return sendMessage(c, "Payroll deleted successfully")
}

// GeneratePayroll godoc
// @Summary Generate Payroll Batch
// @Description Validates the batch and notifies each employee in-app; amounts are not computed
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param batch body models.PayrollGeneratePayload true "Month and employee IDs"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /payroll/generate [post]
func (h *PayrollHandler) GeneratePayroll(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}

	var payload models.PayrollGeneratePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(payload.Employees))
	for _, hex := range payload.Employees {
		ids = append(ids, models.ObjectID(hex))
	}

	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.PayrollBatchGenerated(nctx, payload.Month, ids)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Payroll generated for %s", payload.Month),
		"count":   len(payload.Employees),
	})
}
