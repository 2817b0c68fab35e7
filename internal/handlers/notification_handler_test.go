package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/inforia/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	notified int
	err      error
}

func (f *fakeSweeper) SweepLowQuota(_ context.Context, _ services.Notifier) (int, error) {
	return f.notified, f.err
}

func newSweepApp(sweeper *fakeSweeper) *fiber.App {
	app := fiber.New()
	h := NewNotificationHandler(sweeper, services.LogNotifier{})
	app.Post("/api/notifications/low-quota", h.SweepLowQuota)
	return app
}

func TestSweepLowQuotaReportsCount(t *testing.T) {
	app := newSweepApp(&fakeSweeper{notified: 3})

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/low-quota", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Message  string `json:"message"`
		Notified int    `json:"notified"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "Notifications sent successfully.", got.Message)
	assert.Equal(t, 3, got.Notified)
}

func TestSweepLowQuotaNothingToDo(t *testing.T) {
	app := newSweepApp(&fakeSweeper{notified: 0})

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/low-quota", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "No users to notify.", got.Message)
}

func TestSweepLowQuotaStoreFailure(t *testing.T) {
	app := newSweepApp(&fakeSweeper{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/low-quota", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
