// Package workspace drives a session from the therapist's side: record
// audio, keep a local draft, call the generation endpoint, store the
// result in Drive.
package workspace

import "context"

// Recording is the captured session audio.
type Recording struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Recorder captures microphone audio for one session at a time.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (Recording, error)
}

// GenerationInput is everything the remote pipeline needs for one report.
type GenerationInput struct {
	Audio          Recording
	SessionNotes   string
	PreviousReport string
}

// ReportGenerator invokes the remote quota-gated pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, in GenerationInput) (string, error)
}

// StoredReport is a finished report in the user's Drive folder.
type StoredReport struct {
	ID   string
	Name string
}

// ReportStore persists finished reports and registry documents.
type ReportStore interface {
	Save(ctx context.Context, name, content string) (string, error)
	List(ctx context.Context) ([]StoredReport, error)
	Read(ctx context.Context, fileID string) (string, error)
	SaveOrUpdate(ctx context.Context, name, content, parentID string) (string, error)
	ReadByName(ctx context.Context, name, parentID string) (string, error)
}

// EventSink receives state transitions for the UI.
type EventSink interface {
	StateChanged(state State, detail string)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) StateChanged(State, string) {}
