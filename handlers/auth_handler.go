package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"employee-management/config/middleware"
	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
	"employee-management/pkg/password"
	"employee-management/repository"
)

const invalidCredentials = "Invalid email or password"

type AuthHandler struct {
	userRepo repository.UserRepository
	maker    *paseto.Maker
}

func NewAuthHandler(userRepo repository.UserRepository, maker *paseto.Maker) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		maker:    maker,
	}
}

// Register godoc
// @Summary Register User
// @Description Creates an account with the employee role and returns a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.UserRegisterPayload true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var payload models.UserRegisterPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if _, err := h.userRepo.FindUserByEmail(ctx, payload.Email); err == nil {
		return apperror.Conflict("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperror.Internal("Failed to check existing user", err)
	}

	hashedPassword, err := password.HashPassword(payload.Password)
	if err != nil {
		return apperror.Internal("Failed to hash password", err)
	}

	now := time.Now()
	user := &models.User{
		Email:     payload.Email,
		Password:  hashedPassword,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      models.RoleEmployee,
		LastLogin: &now,
	}
	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict("User already exists")
		}
		return apperror.Internal("Failed to register user", err)
	}

	token, _, err := h.maker.CreateToken(user)
	if err != nil {
		return apperror.Internal("Failed to create token", err)
	}

	logrus.WithField("user_id", user.ID.Hex()).Info("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Login godoc
// @Summary Login User
// @Description Verifies credentials and returns a PASETO token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.UserLoginPayload true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload models.UserLoginPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	user, err := h.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized(invalidCredentials)
		}
		return apperror.Internal("Failed to look up user", err)
	}

	if !password.CheckPasswordHash(payload.Password, user.Password) {
		return apperror.Unauthorized(invalidCredentials)
	}

	now := time.Now()
	if err := h.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	token, _, err := h.maker.CreateToken(user)
	if err != nil {
		return apperror.Internal("Failed to create token", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Me godoc
// @Summary Current User
// @Description Returns the signed-in user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ItemResponse[models.User]
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := middleware.Authorize(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized("User no longer exists")
		}
		return apperror.Internal("Failed to load user", err)
	}
	return sendData(c, fiber.StatusOK, user)
}

// Logout godoc
// @Summary Logout User
// @Description Tokens are stateless; the client discards its token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if _, err := middleware.Authorize(c); err != nil {
		return err
	}
	return sendMessage(c, "Logged out. Remove the token on the client.")
}
