package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
	"employee-management/pkg/apperror"
	"employee-management/pkg/paseto"
)

func newMaker(t *testing.T, ttl time.Duration) *paseto.Maker {
	t.Helper()
	maker, err := paseto.NewMaker(bytes.Repeat([]byte{3}, 32), ttl)
	if err != nil {
		t.Fatalf("maker error: %v", err)
	}
	return maker
}

func newApp(maker *paseto.Maker) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	protected := app.Group("/", AuthMiddleware(maker))
	protected.Get("/any", func(c *fiber.Ctx) error {
		claims, err := Authorize(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.Email)
	})
	protected.Get("/managers", func(c *fiber.Ctx) error {
		if _, err := Authorize(c, Managers...); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func tokenFor(t *testing.T, maker *paseto.Maker, role string) string {
	t.Helper()
	token, _, err := maker.CreateToken(&models.User{ID: primitive.NewObjectID(), Email: role + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	maker := newMaker(t, time.Hour)
	app := newApp(maker)

	shortLived := newMaker(t, time.Millisecond)
	expired := tokenFor(t, shortLived, models.RoleAdmin)
	time.Sleep(5 * time.Millisecond)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/any", "", fiber.StatusUnauthorized},
		{"wrong scheme", "/any", "Token abc", fiber.StatusUnauthorized},
		{"empty bearer", "/any", "Bearer ", fiber.StatusUnauthorized},
		{"garbage token", "/any", "Bearer v2.local.garbage", fiber.StatusUnauthorized},
		{"expired token", "/any", "Bearer " + expired, fiber.StatusUnauthorized},
		{"valid token", "/any", "Bearer " + tokenFor(t, maker, models.RoleEmployee), fiber.StatusOK},
		{"lowercase scheme", "/any", "bearer " + tokenFor(t, maker, models.RoleEmployee), fiber.StatusOK},
		{"role not allowed", "/managers", "Bearer " + tokenFor(t, maker, models.RoleEmployee), fiber.StatusForbidden},
		{"hr manager allowed", "/managers", "Bearer " + tokenFor(t, maker, models.RoleHRManager), fiber.StatusNoContent},
		{"admin allowed", "/managers", "Bearer " + tokenFor(t, maker, models.RoleAdmin), fiber.StatusNoContent},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set(fiber.HeaderAuthorization, tc.header)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s: request failed: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestAuthorizeWithoutClaims(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := Authorize(c)
		return err
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
