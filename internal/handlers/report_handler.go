package handlers

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inforia/backend/internal/dto"
	"github.com/inforia/backend/internal/openrouter"
	"github.com/inforia/backend/internal/principal"
	"github.com/inforia/backend/internal/services"
)

// MsgQuotaExhausted is the user-facing message for an exhausted quota.
const MsgQuotaExhausted = "No te quedan informes disponibles."

// ReportGenerator runs the quota-gated generation pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, req services.GenerationRequest) (string, error)
}

type ReportHandler struct {
	reports ReportGenerator
}

func NewReportHandler(reports ReportGenerator) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate handles POST /api/reports/generate. Validation happens
// before any upstream call so malformed requests never touch quota or
// the AI gateway.
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed. Invalid JWT."})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Request body must be multipart/form-data."})
	}

	files := form.File["audioFile"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid or missing field: 'audioFile' must be a file."})
	}
	audioFile := files[0]

	sessionNotes := ""
	if vals := form.Value["sessionNotes"]; len(vals) > 0 {
		sessionNotes = vals[0]
	}
	if strings.TrimSpace(sessionNotes) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid or missing field: 'sessionNotes' must be a non-empty string."})
	}

	if len(form.File["previousReport"]) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid field type: 'previousReport' must be a string if provided."})
	}
	previousReport := ""
	if vals := form.Value["previousReport"]; len(vals) > 0 {
		previousReport = vals[0]
	}

	f, err := audioFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to read audio file."})
	}
	defer f.Close()

	audioData, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to read audio file."})
	}

	req := services.GenerationRequest{
		Audio: openrouter.AudioPayload{
			Filename: audioFile.Filename,
			MIMEType: audioFile.Header.Get("Content-Type"),
			Data:     audioData,
		},
		SessionNotes:   sessionNotes,
		PreviousReport: previousReport,
	}

	report, err := h.reports.Generate(c.UserContext(), userID, req)
	if err != nil {
		return h.generationError(c, err)
	}

	return c.JSON(dto.ReportResponse{Report: report})
}

func (h *ReportHandler) generationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrQuotaExhausted):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: MsgQuotaExhausted})
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrProfileUnavailable):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Could not retrieve user profile."})
	}

	var svcErr *openrouter.ServiceError
	if errors.As(err, &svcErr) ||
		errors.Is(err, openrouter.ErrTranscriptionInvalid) ||
		errors.Is(err, openrouter.ErrReportInvalid) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "An unexpected error occurred."})
}
