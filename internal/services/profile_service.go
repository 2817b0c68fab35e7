package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inforia/backend/internal/models"
	"gorm.io/gorm"
)

// LowQuotaThreshold is the remaining-report count below which a user is
// notified once per billing cycle.
const LowQuotaThreshold = 10

// Notifier dispatches low-quota warnings to users.
type Notifier interface {
	NotifyLowQuota(ctx context.Context, profile *models.Profile) error
}

// LogNotifier logs the notification instead of sending email. Stands in
// until the mail integration lands.
type LogNotifier struct{}

func (LogNotifier) NotifyLowQuota(_ context.Context, profile *models.Profile) error {
	slog.Info("sending low quota notification", "user_id", profile.ID.String(), "email", profile.Email, "reports_remaining", profile.ReportsRemaining)
	return nil
}

// ProfileService owns the quota bookkeeping on the profiles table.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	return &profile, nil
}

// RemainingReports loads the user's current quota.
func (s *ProfileService) RemainingReports(ctx context.Context, userID uuid.UUID) (int, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return profile.ReportsRemaining, nil
}

// DecrementReports consumes one report from the quota. The decrement is
// a single conditional UPDATE so concurrent requests cannot drive the
// counter negative or lose an update.
func (s *ProfileService) DecrementReports(ctx context.Context, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND reports_remaining > 0", userID).
		UpdateColumn("reports_remaining", gorm.Expr("reports_remaining - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement report count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQuotaExhausted
	}
	return nil
}

// RenewPlan resets the quota to the plan's monthly allowance and clears
// the low-quota notification flag.
func (s *ProfileService) RenewPlan(ctx context.Context, userID uuid.UUID) (int, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	quota := models.PlanQuota(profile.Plan)
	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reports_remaining":  quota,
			"low_quota_notified": false,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to renew plan: %w", result.Error)
	}
	return quota, nil
}

// SheetID returns the CRM spreadsheet id, or "" when none was
// provisioned yet.
func (s *ProfileService) SheetID(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.SheetID == nil {
		return "", nil
	}
	return *profile.SheetID, nil
}

// SetSheetID stores the provisioned CRM spreadsheet id on the profile.
func (s *ProfileService) SetSheetID(ctx context.Context, userID uuid.UUID, sheetID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("sheet_id", sheetID)
	if result.Error != nil {
		return fmt.Errorf("failed to store sheet id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SweepLowQuota notifies every profile under the threshold that has not
// been notified yet, then marks it notified. Idempotent per profile:
// the flag stays set until the plan is renewed.
func (s *ProfileService) SweepLowQuota(ctx context.Context, notifier Notifier) (int, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Where("reports_remaining < ? AND low_quota_notified = ?", LowQuotaThreshold, false).
		Find(&profiles).Error
	if err != nil {
		return 0, fmt.Errorf("failed to fetch low-quota profiles: %w", err)
	}

	notified := 0
	for i := range profiles {
		profile := &profiles[i]
		if err := notifier.NotifyLowQuota(ctx, profile); err != nil {
			slog.Error("low quota notification failed", "user_id", profile.ID.String(), "error", err)
			continue
		}
		result := s.db.WithContext(ctx).
			Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			Update("low_quota_notified", true)
		if result.Error != nil {
			slog.Error("failed to mark profile as notified", "user_id", profile.ID.String(), "error", result.Error)
			continue
		}
		notified++
	}
	return notified, nil
}
