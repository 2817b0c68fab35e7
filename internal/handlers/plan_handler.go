package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inforia/backend/internal/dto"
	"github.com/inforia/backend/internal/models"
	"github.com/inforia/backend/internal/principal"
	"github.com/inforia/backend/internal/services"
)

// PlanStore is the slice of profile storage the plan endpoints need.
type PlanStore interface {
	RenewPlan(ctx context.Context, userID uuid.UUID) (int, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type PlanHandler struct {
	profiles PlanStore
}

func NewPlanHandler(profiles PlanStore) *PlanHandler {
	return &PlanHandler{profiles: profiles}
}

// Renew handles POST /api/plan/renew: resets the quota to the plan's
// monthly allowance and clears the low-quota flag.
func (h *PlanHandler) Renew(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed. Invalid JWT."})
	}

	quota, err := h.profiles.RenewPlan(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Profile not found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to renew plan."})
	}

	return c.JSON(dto.RenewResponse{Message: "Plan renewed successfully.", ReportsRemaining: quota})
}

// Quota handles GET /api/plan/quota.
func (h *PlanHandler) Quota(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed. Invalid JWT."})
	}

	profile, err := h.profiles.GetProfile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Profile not found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Could not retrieve user profile."})
	}

	return c.JSON(dto.QuotaResponse{Plan: profile.Plan, ReportsRemaining: profile.ReportsRemaining})
}
