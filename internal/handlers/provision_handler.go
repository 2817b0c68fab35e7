package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inforia/backend/internal/dto"
	"github.com/inforia/backend/internal/principal"
	"github.com/inforia/backend/internal/services"
	"github.com/inforia/backend/internal/sheets"
)

// CRMFactory builds a CRM creator scoped to the user's OAuth access
// token. Kept as a factory so tests can swap the Google client out.
type CRMFactory func(ctx context.Context, accessToken string) (services.CRMCreator, error)

// SheetsCRMFactory is the production factory backed by Google Sheets.
func SheetsCRMFactory(ctx context.Context, accessToken string) (services.CRMCreator, error) {
	return sheets.NewClient(ctx, accessToken)
}

// Provisioner creates the per-user CRM spreadsheet.
type Provisioner interface {
	ProvisionCRM(ctx context.Context, userID uuid.UUID, creator services.CRMCreator) (string, bool, error)
}

type ProvisionHandler struct {
	provisioning Provisioner
	newCreator   CRMFactory
}

func NewProvisionHandler(provisioning Provisioner, newCreator CRMFactory) *ProvisionHandler {
	return &ProvisionHandler{provisioning: provisioning, newCreator: newCreator}
}

// ProvisionCRM handles POST /api/crm/provision. Idempotent: a profile
// that already carries a sheet id gets it back without a new spreadsheet.
func (h *ProvisionHandler) ProvisionCRM(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed. Invalid JWT."})
	}

	var req dto.ProvisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body."})
	}
	if strings.TrimSpace(req.ProviderToken) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Missing field: 'provider_token'."})
	}

	creator, err := h.newCreator(c.UserContext(), req.ProviderToken)
	if err != nil {
		slog.Error("failed to build sheets client", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "Failed to reach Google Sheets."})
	}

	sheetID, created, err := h.provisioning.ProvisionCRM(c.UserContext(), userID, creator)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Profile not found."})
		}
		slog.Error("CRM provisioning failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "Failed to create CRM spreadsheet."})
	}

	msg := "CRM already provisioned."
	if created {
		msg = "CRM created successfully."
	}
	return c.JSON(dto.ProvisionResponse{SheetID: sheetID, Message: msg})
}
