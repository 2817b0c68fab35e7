package services

import (
	"context"

	"github.com/google/uuid"
)

// CRMCreator creates the patient CRM spreadsheet in the user's account.
type CRMCreator interface {
	CreateCRM(ctx context.Context) (string, error)
}

// ProfileSheetStore is the slice of profile storage provisioning needs.
type ProfileSheetStore interface {
	SheetID(ctx context.Context, userID uuid.UUID) (string, error)
	SetSheetID(ctx context.Context, userID uuid.UUID, sheetID string) error
}

// ProvisioningService creates the per-user CRM spreadsheet after OAuth
// sign-in. It runs synchronously and is idempotent: a profile that
// already carries a sheet id is left untouched.
type ProvisioningService struct {
	profiles ProfileSheetStore
}

func NewProvisioningService(profiles ProfileSheetStore) *ProvisioningService {
	return &ProvisioningService{profiles: profiles}
}

// ProvisionCRM returns the user's CRM spreadsheet id, creating the
// spreadsheet on first call.
func (s *ProvisioningService) ProvisionCRM(ctx context.Context, userID uuid.UUID, creator CRMCreator) (string, bool, error) {
	existing, err := s.profiles.SheetID(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if existing != "" {
		return existing, false, nil
	}

	sheetID, err := creator.CreateCRM(ctx)
	if err != nil {
		return "", false, err
	}
	if err := s.profiles.SetSheetID(ctx, userID, sheetID); err != nil {
		return "", false, err
	}
	return sheetID, true, nil
}
