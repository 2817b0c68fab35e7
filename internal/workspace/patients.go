package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inforia/backend/internal/drive"
)

const registryFileName = "patients.json"

// Patient is one registry entry. Keyed by Email.
type Patient struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Address       string `json:"address,omitempty"`
	ConsultReason string `json:"consult_reason,omitempty"`
	DriveFolderID string `json:"drive_folder_id,omitempty"`
}

// registryStore is the slice of the report store the registry needs.
type registryStore interface {
	SaveOrUpdate(ctx context.Context, name, content, parentID string) (string, error)
	ReadByName(ctx context.Context, name, parentID string) (string, error)
}

// PatientRegistry keeps patients.json in the user's Drive folder. The
// file name acts as the key: every write replaces the same document.
type PatientRegistry struct {
	store    registryStore
	folderID string
}

func NewPatientRegistry(store registryStore, folderID string) *PatientRegistry {
	return &PatientRegistry{store: store, folderID: folderID}
}

// List loads the registry. A missing file is an empty registry.
func (r *PatientRegistry) List(ctx context.Context) ([]Patient, error) {
	content, err := r.store.ReadByName(ctx, registryFileName, r.folderID)
	if err != nil {
		if errors.Is(err, drive.ErrFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load patient registry: %w", err)
	}

	var patients []Patient
	if err := json.Unmarshal([]byte(content), &patients); err != nil {
		return nil, fmt.Errorf("failed to decode patient registry: %w", err)
	}
	return patients, nil
}

// Upsert adds the patient or replaces the entry with the same email,
// then writes the whole registry back.
func (r *PatientRegistry) Upsert(ctx context.Context, patient Patient) error {
	if strings.TrimSpace(patient.Email) == "" {
		return errors.New("patient email is required")
	}

	patients, err := r.List(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range patients {
		if strings.EqualFold(patients[i].Email, patient.Email) {
			patients[i] = patient
			replaced = true
			break
		}
	}
	if !replaced {
		patients = append(patients, patient)
	}

	data, err := json.Marshal(patients)
	if err != nil {
		return fmt.Errorf("failed to encode patient registry: %w", err)
	}
	if _, err := r.store.SaveOrUpdate(ctx, registryFileName, string(data), r.folderID); err != nil {
		return fmt.Errorf("failed to save patient registry: %w", err)
	}
	return nil
}

// Find returns the patient with the given email, or nil.
func (r *PatientRegistry) Find(ctx context.Context, email string) (*Patient, error) {
	patients, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if strings.EqualFold(patients[i].Email, email) {
			return &patients[i], nil
		}
	}
	return nil, nil
}
