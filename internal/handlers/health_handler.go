package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inforia/backend/internal/dto"
)

type HealthHandler struct {
	pingDB func() error
}

func NewHealthHandler(pingDB func() error) *HealthHandler {
	return &HealthHandler{pingDB: pingDB}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "up"
	status := "ok"
	if err := h.pingDB(); err != nil {
		dbStatus = "down"
		status = "degraded"
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}
	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
