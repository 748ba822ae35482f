package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/repository"
	"employee-management/services"
)

const employeeNotFound = "Employee not found"

type EmployeeHandler struct {
	employeeRepo repository.EmployeeRepository
	deptRepo     repository.DepartmentRepository
	userRepo     repository.UserRepository
	notifier     *services.NotificationService
}

func NewEmployeeHandler(
	employeeRepo repository.EmployeeRepository,
	deptRepo repository.DepartmentRepository,
	userRepo repository.UserRepository,
	notifier *services.NotificationService,
) *EmployeeHandler {
	return &EmployeeHandler{
		employeeRepo: employeeRepo,
		deptRepo:     deptRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

func (h *EmployeeHandler) checkDepartment(ctx context.Context, id primitive.ObjectID) error {
	if _, err := h.deptRepo.GetDepartmentByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("Department does not exist", nil)
		}
		return apperror.Internal("Failed to check department", err)
	}
	return nil
}

func (h *EmployeeHandler) adjustCount(ctx context.Context, dept primitive.ObjectID, delta int) {
	if err := h.deptRepo.AdjustEmployeeCount(ctx, dept, delta); err != nil {
		logrus.WithError(err).WithField("department", dept.Hex()).Warn("employee count not adjusted")
	}
}

// CreateEmployee godoc
// @Summary Create Employee
// @Description Links an existing user to a department as an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param employee body models.EmployeeCreatePayload true "New employee"
// @Success 201 {object} models.ItemResponse[models.EmployeeView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Employee ID already exists"
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}

	var payload models.EmployeeCreatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	employee := payload.ToEmployee()

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if _, err := h.userRepo.FindUserByID(ctx, employee.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("User does not exist", nil)
		}
		return apperror.Internal("Failed to check user", err)
	}
	if err := h.checkDepartment(ctx, employee.DepartmentID); err != nil {
		return err
	}

	if err := h.employeeRepo.CreateEmployee(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict("Employee ID already exists")
		}
		return apperror.Internal("Failed to create employee", err)
	}
	h.adjustCount(ctx, employee.DepartmentID, 1)

	view, err := h.employeeRepo.GetEmployeeByID(ctx, employee.ID)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to load employee")
	}

	nctx, ncancel := notifyContext(c)
	defer ncancel()
	h.notifier.EmployeeOnboarded(nctx, view)

	return sendData(c, fiber.StatusCreated, view)
}

// GetAllEmployees godoc
// @Summary List Employees
// @Description Employees with their user and department expanded
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ListResponse[models.EmployeeView]
// @Router /employees [get]
func (h *EmployeeHandler) GetAllEmployees(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	employees, err := h.employeeRepo.GetAllEmployees(ctx)
	if err != nil {
		return apperror.Internal("Failed to fetch employees", err)
	}
	return sendList(c, employees)
}

// GetEmployeeByID godoc
// @Summary Get Employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} models.ItemResponse[models.EmployeeView]
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployeeByID(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, employeeNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	employee, err := h.employeeRepo.GetEmployeeByID(ctx, id)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to fetch employee")
	}
	return sendData(c, fiber.StatusOK, employee)
}

// UpdateEmployee godoc
// @Summary Update Employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param employee body models.EmployeeUpdatePayload true "Fields to change"
// @Success 200 {object} models.ItemResponse[models.EmployeeView]
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.Managers...); err != nil {
		return err
	}
	id, err := paramID(c, employeeNotFound)
	if err != nil {
		return err
	}

	var payload models.EmployeeUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	set := payload.Updates()
	if len(set) == 0 {
		return apperror.Validation("No fields to update", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	var newDept primitive.ObjectID
	if payload.Department != nil {
		newDept = models.ObjectID(*payload.Department)
		if err := h.checkDepartment(ctx, newDept); err != nil {
			return err
		}
	}

	before, err := h.employeeRepo.UpdateEmployee(ctx, id, set)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to update employee")
	}
	if payload.Department != nil && before.DepartmentID != newDept {
		h.adjustCount(ctx, before.DepartmentID, -1)
		h.adjustCount(ctx, newDept, 1)
	}

	employee, err := h.employeeRepo.GetEmployeeByID(ctx, id)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to load employee")
	}
	return sendData(c, fiber.StatusOK, employee)
}

// DeleteEmployee godoc
// @Summary Delete Employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c, middleware.AdminsOnly...); err != nil {
		return err
	}
	id, err := paramID(c, employeeNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	deleted, err := h.employeeRepo.DeleteEmployee(ctx, id)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to delete employee")
	}
	h.adjustCount(ctx, deleted.DepartmentID, -1)
	return sendMessage(c, "Employee deleted successfully")
}

// GetEmployeeBadge godoc
// @Summary Employee Badge
// @Description PNG QR code encoding the employee ID
// @Tags Employees
// @Produce png
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id}/badge [get]
func (h *EmployeeHandler) GetEmployeeBadge(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	id, err := paramID(c, employeeNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	employee, err := h.employeeRepo.GetEmployeeByID(ctx, id)
	if err != nil {
		return storeError(err, employeeNotFound, "Failed to fetch employee")
	}

	png, err := qrcode.Encode(employee.EmployeeID, qrcode.Medium, 256)
	if err != nil {
		return apperror.Internal("Failed to generate badge", err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="badge-`+employee.EmployeeID+`.png"`)
	return c.Send(png)
}
