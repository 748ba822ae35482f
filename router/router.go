package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"employee-management/config"
	"employee-management/config/middleware"
	_ "employee-management/docs"
	"employee-management/handlers"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
	"employee-management/repository"
	"employee-management/services"
)

// Dependencies is everything the HTTP layer needs, built once in main.
type Dependencies struct {
	Users         repository.UserRepository
	Employees     repository.EmployeeRepository
	Departments   repository.DepartmentRepository
	Attendance    repository.AttendanceRepository
	Leaves        repository.LeaveRepository
	Payrolls      repository.PayrollRepository
	Documents     repository.DocumentRepository
	Notifications *services.NotificationService
	Files         handlers.FileStore
	Tokens        *paseto.Maker
}

// NewApp builds the fiber app with the shared error handler, the global
// middleware and every route.
func NewApp(deps Dependencies, corsOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Employee Management API",
		ErrorHandler: apperror.Handler,
		BodyLimit:    int(models.MaxUploadBytes + models.MB),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} ${path}\n",
	}))
	config.SetupCORS(app, corsOrigins)

	SetupRoutes(app, deps)
	return app
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	deptHandler := handlers.NewDepartmentHandler(deps.Departments, deps.Users)
	employeeHandler := handlers.NewEmployeeHandler(deps.Employees, deps.Departments, deps.Users, deps.Notifications)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Attendance, deps.Notifications)
	leaveHandler := handlers.NewLeaveHandler(deps.Leaves, deps.Notifications)
	payrollHandler := handlers.NewPayrollHandler(deps.Payrolls, deps.Notifications)
	documentHandler := handlers.NewDocumentHandler(deps.Documents, deps.Files)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Employee Management API",
			"status":  "running",
			"docs":    "/docs/index.html",
		})
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/health", handlers.HealthCheck)

	protected := middleware.AuthMiddleware(deps.Tokens)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", protected, authHandler.Me)
	auth.Post("/logout", protected, authHandler.Logout)

	employees := api.Group("/employees", protected)
	employees.Get("/", employeeHandler.GetAllEmployees)
	employees.Post("/", employeeHandler.CreateEmployee)
	employees.Get("/:id/badge", employeeHandler.GetEmployeeBadge)
	employees.Get("/:id", employeeHandler.GetEmployeeByID)
	employees.Put("/:id", employeeHandler.UpdateEmployee)
	employees.Delete("/:id", employeeHandler.DeleteEmployee)

	departments := api.Group("/departments", protected)
	departments.Get("/", deptHandler.GetAllDepartments)
	departments.Post("/", deptHandler.CreateDepartment)
	departments.Get("/:id", deptHandler.GetDepartmentByID)
	departments.Put("/:id", deptHandler.UpdateDepartment)
	departments.Delete("/:id", deptHandler.DeleteDepartment)

	attendance := api.Group("/attendance", protected)
	attendance.Get("/", attendanceHandler.GetAllAttendance)
	attendance.Post("/", attendanceHandler.CreateAttendance)
	attendance.Get("/:id", attendanceHandler.GetAttendanceByID)
	attendance.Put("/:id", attendanceHandler.UpdateAttendance)
	attendance.Delete("/:id", attendanceHandler.DeleteAttendance)

	leaves := api.Group("/leaves", protected)
	leaves.Get("/", leaveHandler.GetAllLeaves)
	leaves.Post("/", leaveHandler.CreateLeave)
	leaves.Get("/:id", leaveHandler.GetLeaveByID)
	leaves.Put("/:id", leaveHandler.UpdateLeave)
	leaves.Delete("/:id", leaveHandler.DeleteLeave)
	leaves.Post("/:id/approve", leaveHandler.ApproveLeave)
	leaves.Post("/:id/reject", leaveHandler.RejectLeave)

	payroll := api.Group("/payroll", protected)
	payroll.Get("/", payrollHandler.GetAllPayrolls)
	payroll.Post("/", payrollHandler.CreatePayroll)
	payroll.Post("/generate", payrollHandler.GeneratePayroll)
	payroll.Get("/:id", payrollHandler.GetPayrollByID)
	payroll.Put("/:id", payrollHandler.UpdatePayroll)
	payroll.Delete("/:id", payrollHandler.DeletePayroll)

	documents := api.Group("/documents", protected)
	documents.Post("/", documentHandler.UploadDocument)
	documents.Get("/resource", documentHandler.GetDocumentsByResource)
	documents.Get("/my-documents", documentHandler.GetMyDocuments)
	documents.Post("/batch-delete", documentHandler.BatchDeleteDocuments)
	documents.Get("/:id/download", documentHandler.DownloadDocument)
	documents.Get("/:id", documentHandler.GetDocument)
	documents.Delete("/:id", documentHandler.DeleteDocument)

	notifications := api.Group("/notifications", protected)
	notifications.Get("/", notificationHandler.GetNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Put("/read-all", notificationHandler.MarkAllAsRead)
	notifications.Get("/preferences", notificationHandler.GetPreferences)
	notifications.Get("/preferences/get", notificationHandler.GetPreferences)
	notifications.Put("/preferences", notificationHandler.UpdatePreferences)
	notifications.Put("/preferences/update", notificationHandler.UpdatePreferences)
	notifications.Post("/test-email", notificationHandler.SendTestEmail)
	notifications.Put("/:id/read", notificationHandler.MarkAsRead)
	notifications.Delete("/:id", notificationHandler.DeleteNotification)

	logrus.WithField("routes", len(app.GetRoutes(true))).Debug("routes registered")
}
