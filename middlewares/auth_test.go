package middlewares_test

import (
	"net/http/httptest"
	"os"
	"testing"

	"lotes-backend/middlewares"
	"lotes-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET_KEY", "test-secret-key")
	os.Exit(m.Run())
}

func authApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", middlewares.IsAuthenticatedHeader(), func(c *fiber.Ctx) error {
		userID, isAdmin := middlewares.ActingIdentity(c)
		return c.JSON(fiber.Map{"user_id": userID, "is_admin": isAdmin})
	})
	app.Get("/admin", middlewares.IsAuthenticatedHeader(), middlewares.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := authApp()

	t.Run("valid token passes and sets locals", func(t *testing.T) {
		token, err := middlewares.GenerateJWT(7, models.RoleClient)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("client role cannot reach admin routes", func(t *testing.T) {
		token, err := middlewares.GenerateJWT(7, models.RoleClient)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin role reaches admin routes", func(t *testing.T) {
		token, err := middlewares.GenerateJWT(1, models.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
