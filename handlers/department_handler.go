package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/repository"
)

const departmentNotFound = "Department not found"

type DepartmentHandler struct {
	deptRepo repository.DepartmentRepository
	userRepo repository.UserRepository
}

func NewDepartmentHandler(deptRepo repository.DepartmentRepository, userRepo repository.UserRepository) *DepartmentHandler {
	return &DepartmentHandler{
		deptRepo: deptRepo,
		userRepo: userRepo,
	}
}

func (h *DepartmentHandler) checkManager(ctx context.Context, id primitive.ObjectID) error {
	if _, err := h.userRepo.FindUserByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("Manager user does not exist", nil)
		}
		return apperror.Internal("Failed to check manager", err)
	}
	return nil
}

func (h *DepartmentHandler) checkNameFree(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := h.deptRepo.FindDepartmentByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperror.Internal("Failed to check department", err)
	}
	if existing.ID != self {
		return apperror.Conflict("Department name already exists")
	}
	return nil
}

// CreateDepartment godoc
// @Summary Create Department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param department body models.DepartmentCreatePayload true "New department"
// @Success 201 {object} models.ItemResponse[models.DepartmentView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Department name already exists"
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}

	var payload models.DepartmentCreatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.checkNameFree(ctx, payload.Name, primitive.NilObjectID); err != nil {
		return err
	}
	dept := payload.ToDepartment()
	if dept.Manager != nil {
		if err := h.checkManager(ctx, *dept.Manager); err != nil {
			return err
		}
	}

	if err := h.deptRepo.CreateDepartment(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict("Department name already exists")
		}
		return apperror.Internal("Failed to create department", err)
	}

	view, err := h.deptRepo.GetDepartmentByID(ctx, dept.ID)
	if err != nil {
		return storeError(err, departmentNotFound, "Failed to load department")
	}
	return sendData(c, fiber.StatusCreated, view)
}

// GetAllDepartments godoc
// @Summary List Departments
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ListResponse[models.DepartmentView]
// @Router /departments [get]
func (h *DepartmentHandler) GetAllDepartments(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	departments, err := h.deptRepo.GetAllDepartments(ctx)
	if err != nil {
		return apperror.Internal("Failed to fetch departments", err)
	}
	return sendList(c, departments)
}

// GetDepartmentByID godoc
// @Summary Get Department
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} models.ItemResponse[models.DepartmentView]
// @Failure 404 {object} models.ErrorResponse
// @Router /departments/{id} [get]
func (h *DepartmentHandler) GetDepartmentByID(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, departmentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	dept, err := h.deptRepo.GetDepartmentByID(ctx, id)
	if err != nil {
		return storeError(err, departmentNotFound, "Failed to fetch department")
	}
	return sendData(c, fiber.StatusOK, dept)
}

// UpdateDepartment godoc
// @Summary Update Department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Param department body models.DepartmentUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.DepartmentView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /departments/{id} [put]
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}
	id, err := paramID(c, departmentNotFound)
	if err != nil {
		return err
	}

	var payload models.DepartmentUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	set := payload.Updates()
	if len(set) == 0 {
		return apperror.Validation("No fields to update", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if payload.Name != nil {
		if err := h.checkNameFree(ctx, *payload.Name, id); err != nil {
			return err
		}
	}
	if payload.Manager != nil {
		if err := h.checkManager(ctx, models.ObjectID(*payload.Manager)); err != nil {
			return err
		}
	}

	dept, err := h.deptRepo.UpdateDepartment(ctx, id, set)
	if err != nil {
		return storeError(err, departmentNotFound, "Failed to update department")
	}
	return sendData(c, fiber.StatusOK, dept)
}

// DeleteDepartment godoc
// @Summary Delete Department
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) DeleteDepartment(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.AdminsOnly...); err != nil {
		return err
	}
	id, err := paramID(c, departmentNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := h.deptRepo.DeleteDepartment(ctx, id); err != nil {
		return storeError(err, departmentNotFound, "Failed to delete department")
	}
	return sendMessage(c, "Department deleted successfully")
}
