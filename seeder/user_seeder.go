package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"employee-management/models"
	"employee-management/pkg/password"
	"employee-management/repository"
)

// SeedAdmin creates the first admin account unless a user with that email
// already exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, userRepo repository.UserRepository, email, plain string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return false, errors.New("seed admin email and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := userRepo.FindUserByEmail(ctx, email); err == nil {
		logrus.WithField("email", email).Info("admin user already exists, skipping")
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hashed, err := password.HashPassword(plain)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	logrus.WithField("email", email).Info("admin user created")
	return true, nil
}
