package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthOK(t *testing.T) {
	app := fiber.New()
	app.Get("/api/health", NewHealthHandler(func() error { return nil }).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Status string `json:"status"`
		DB     string `json:"db"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "up", got.DB)
}

func TestHealthDegraded(t *testing.T) {
	app := fiber.New()
	app.Get("/api/health", NewHealthHandler(func() error { return errors.New("conn refused") }).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var got struct {
		Status string `json:"status"`
		DB     string `json:"db"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "degraded", got.Status)
	assert.Equal(t, "down", got.DB)
}
