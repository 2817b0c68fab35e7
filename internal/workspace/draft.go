package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	draftMetaFile  = "draft.json"
	draftAudioFile = "draft.audio"
)

var ErrNoDraft = errors.New("no draft saved")

// draftMeta is the JSON sidecar next to the audio blob.
type draftMeta struct {
	SessionNotes  string    `json:"session_notes"`
	AudioFilename string    `json:"audio_filename,omitempty"`
	AudioMIMEType string    `json:"audio_mime_type,omitempty"`
	HasAudio      bool      `json:"has_audio"`
	SavedAt       time.Time `json:"saved_at"`
}

// DraftStore persists one in-progress session to local disk so a crash
// or accidental close does not lose the therapist's notes or audio.
type DraftStore struct {
	dir string
}

func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

// Save writes the notes and, when present, the captured audio.
func (s *DraftStore) Save(sessionNotes string, rec *Recording) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create draft dir: %w", err)
	}

	meta := draftMeta{
		SessionNotes: sessionNotes,
		SavedAt:      time.Now().UTC(),
	}
	if rec != nil {
		meta.AudioFilename = rec.Filename
		meta.AudioMIMEType = rec.MIMEType
		meta.HasAudio = true
		if err := os.WriteFile(filepath.Join(s.dir, draftAudioFile), rec.Data, 0o600); err != nil {
			return fmt.Errorf("failed to write draft audio: %w", err)
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, draftMetaFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return nil
}

// Load returns the saved notes and audio, or ErrNoDraft.
func (s *DraftStore) Load() (string, *Recording, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, draftMetaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, ErrNoDraft
		}
		return "", nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var meta draftMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", nil, fmt.Errorf("failed to decode draft: %w", err)
	}

	var rec *Recording
	if meta.HasAudio {
		audio, err := os.ReadFile(filepath.Join(s.dir, draftAudioFile))
		if err != nil {
			return "", nil, fmt.Errorf("failed to read draft audio: %w", err)
		}
		rec = &Recording{
			Filename: meta.AudioFilename,
			MIMEType: meta.AudioMIMEType,
			Data:     audio,
		}
	}
	return meta.SessionNotes, rec, nil
}

// Clear removes the saved draft, if any.
func (s *DraftStore) Clear() error {
	for _, name := range []string{draftMetaFile, draftAudioFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
	}
	return nil
}
