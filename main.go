package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"employee-management/config"
	"employee-management/pkg/email"
	"employee-management/pkg/paseto"
	"employee-management/pkg/storage"
	util "employee-management/pkg/utils"
	"employee-management/repository"
	"employee-management/router"
	"employee-management/seeder"
	"employee-management/services"

	_ "time/tzdata"
)

// @title Employee Management API
// @version 1.0
// @description REST API for employees, departments, attendance, leave, payroll, documents and notifications
//
// @contact.name API Support
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:5000
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the PASETO token.
//
// @tag.name Health
// @tag.description Liveness
//
// @tag.name Auth
// @tag.description Registration and sessions
//
// @tag.name Employees
// @tag.name Departments
// @tag.name Attendance
// @tag.name Leaves
// @tag.name Payroll
//
// @tag.name Documents
// @tag.description File uploads attached to records
//
// @tag.name Notifications
// @tag.description In-app notifications, email delivery and preferences
func main() {
	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		key, err := util.GeneratePasetoSecret()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.MongoConnect(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Database connection failed")
	}
	defer config.DisconnectDB(client)

	db := client.Database(cfg.DatabaseName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logrus.WithError(err).Fatal("Failed to create indexes")
	}

	tokens, err := paseto.NewMaker(cfg.PasetoKey, cfg.TokenTTL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create token maker")
	}

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to prepare upload directory")
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load email templates")
	}

	var transport email.Transport
	if cfg.SMTPHost != "" {
		transport = email.NewSMTPTransport(email.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			User:        cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			UseTLS:      cfg.SMTPUseTLS,
			ImplicitTLS: cfg.SMTPPort == 465,
		})
		logrus.WithField("host", cfg.SMTPHost).Info("Email delivery via SMTP")
	} else {
		transport = email.NewLogTransport()
		logrus.Warn("SMTP_HOST not set, emails will only be logged")
	}

	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)

	notifier := services.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewPreferenceRepository(db),
		userRepo,
		employeeRepo,
		renderer,
		email.NewClient(transport, cfg.EmailFrom),
	)

	if cfg.RunSeed {
		seeder.SeedDepartments(ctx, deptRepo)
		if cfg.SeedAdminEmail != "" {
			if _, err := seeder.SeedAdmin(ctx, userRepo, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
				logrus.WithError(err).Error("Admin seeding failed")
			}
		}
	}

	app := router.NewApp(router.Dependencies{
		Users:         userRepo,
		Employees:     employeeRepo,
		Departments:   deptRepo,
		Attendance:    repository.NewAttendanceRepository(db),
		Leaves:        repository.NewLeaveRepository(db),
		Payrolls:      repository.NewPayrollRepository(db),
		Documents:     repository.NewDocumentRepository(db),
		Notifications: notifier,
		Files:         files,
		Tokens:        tokens,
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Env,
		"cors": cfg.CORSOrigins,
	}).Info("Server starting")
	logrus.Infof("API Documentation: http://localhost:%s/docs/index.html", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Error("Server stopped")
	}
}
