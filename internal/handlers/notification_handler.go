package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/inforia/backend/internal/dto"
	"github.com/inforia/backend/internal/services"
)

// LowQuotaSweeper scans for profiles under the quota threshold.
type LowQuotaSweeper interface {
	SweepLowQuota(ctx context.Context, notifier services.Notifier) (int, error)
}

type NotificationHandler struct {
	profiles LowQuotaSweeper
	notifier services.Notifier
}

func NewNotificationHandler(profiles LowQuotaSweeper, notifier services.Notifier) *NotificationHandler {
	return &NotificationHandler{profiles: profiles, notifier: notifier}
}

// SweepLowQuota handles POST /api/notifications/low-quota. Idempotent
// per profile: a notified profile stays flagged until renewal.
func (h *NotificationHandler) SweepLowQuota(c *fiber.Ctx) error {
	notified, err := h.profiles.SweepLowQuota(c.UserContext(), h.notifier)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to fetch users."})
	}

	if notified == 0 {
		return c.JSON(dto.SweepResponse{Message: "No users to notify.", Notified: 0})
	}
	return c.JSON(dto.SweepResponse{Message: "Notifications sent successfully.", Notified: notified})
}
