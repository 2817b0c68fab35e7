package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/inforia/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminApp(token string) *fiber.App {
	app := fiber.New()
	app.Post("/sweep", AdminRequired(&config.Config{AdminToken: token}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestAdminRequiredAccepts(t *testing.T) {
	app := newAdminApp("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	req.Header.Set("X-Admin-Token", "s3cret")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRequiredRejectsWrongToken(t *testing.T) {
	app := newAdminApp("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	req.Header.Set("X-Admin-Token", "wrong")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRequiredRejectsWhenUnconfigured(t *testing.T) {
	// An empty configured token must fail closed, not open.
	app := newAdminApp("")

	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	req.Header.Set("X-Admin-Token", "")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
