package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inforia/backend/internal/openrouter"
)

// Transcriber turns session audio into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio openrouter.AudioPayload) (string, error)
}

// Composer turns a transcript plus therapist notes into a structured
// clinical report.
type Composer interface {
	ComposeReport(ctx context.Context, transcript, sessionNotes, previousReport string) (string, error)
}

// QuotaStore is the slice of profile storage the orchestrator needs.
type QuotaStore interface {
	RemainingReports(ctx context.Context, userID uuid.UUID) (int, error)
	DecrementReports(ctx context.Context, userID uuid.UUID) error
}

// GenerationRequest is one report-generation job. It lives for a single
// call and is never persisted.
type GenerationRequest struct {
	Audio          openrouter.AudioPayload
	SessionNotes   string
	PreviousReport string
}

// ReportService runs the quota-gated pipeline: quota check, transcribe,
// compose, decrement. Failed stages never consume quota; only a fully
// successful generation does.
type ReportService struct {
	transcriber Transcriber
	composer    Composer
	quota       QuotaStore
}

func NewReportService(transcriber Transcriber, composer Composer, quota QuotaStore) *ReportService {
	return &ReportService{
		transcriber: transcriber,
		composer:    composer,
		quota:       quota,
	}
}

// Generate produces a clinical report for the user's session. The quota
// is checked before any paid upstream call is made, and decremented
// only after both AI stages succeed. A failed decrement is logged as
// critical but does not discard the report the user already paid for in
// latency: quota integrity is allowed to drift instead.
func (s *ReportService) Generate(ctx context.Context, userID uuid.UUID, req GenerationRequest) (string, error) {
	remaining, err := s.quota.RemainingReports(ctx, userID)
	if err != nil {
		return "", err
	}
	if remaining <= 0 {
		return "", ErrQuotaExhausted
	}

	transcript, err := s.transcriber.Transcribe(ctx, req.Audio)
	if err != nil {
		return "", err
	}

	report, err := s.composer.ComposeReport(ctx, transcript, req.SessionNotes, req.PreviousReport)
	if err != nil {
		return "", err
	}

	if err := s.quota.DecrementReports(ctx, userID); err != nil {
		slog.Error("CRITICAL: failed to decrement report count", "user_id", userID.String(), "error", err)
	}

	return report, nil
}
