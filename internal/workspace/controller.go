package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the workspace lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)

var (
	ErrNotRecording     = errors.New("no active recording")
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrBusy             = errors.New("generation already in progress")
)

// Controller orchestrates one session workspace. Transitions check and
// set the state in a single critical section; a second StartRecording
// or Generate while one is in flight fails fast instead of queueing.
type Controller struct {
	recorder  Recorder
	generator ReportGenerator
	store     ReportStore
	drafts    *DraftStore
	events    EventSink

	mu        sync.Mutex
	evMu      sync.Mutex
	state     State
	recording *Recording
}

func NewController(recorder Recorder, generator ReportGenerator, store ReportStore, drafts *DraftStore, events EventSink) *Controller {
	if events == nil {
		events = NopEvents{}
	}
	return &Controller{
		recorder:  recorder,
		generator: generator,
		store:     store,
		drafts:    drafts,
		events:    events,
		state:     StateIdle,
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// commit records the transition and emits its event. Callers must hold
// mu; commit releases it. The event mutex is taken before mu is
// released so observers receive events in transition order, and a sink
// may call State without deadlocking.
func (c *Controller) commit(state State, detail string) {
	c.state = state
	c.evMu.Lock()
	c.mu.Unlock()
	c.events.StateChanged(state, detail)
	c.evMu.Unlock()
}

func (c *Controller) setState(state State, detail string) {
	c.mu.Lock()
	c.commit(state, detail)
}

// StartRecording begins audio capture. The recorder is started under
// the lock so the guard and the capture cannot interleave.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateRecording:
		c.mu.Unlock()
		return ErrAlreadyRecording
	case StateProcessing:
		c.mu.Unlock()
		return ErrBusy
	}

	if err := c.recorder.Start(ctx); err != nil {
		c.commit(StateError, "recorder start failed")
		return err
	}
	c.commit(StateRecording, "recording started")
	return nil
}

// StopRecording ends audio capture and keeps the recording in memory
// for the next Generate call.
func (c *Controller) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return ErrNotRecording
	}

	rec, err := c.recorder.Stop(ctx)
	if err != nil {
		c.commit(StateError, "recorder stop failed")
		return err
	}
	c.recording = &rec
	c.commit(StateIdle, "recording captured")
	return nil
}

// Generate sends the captured recording plus the therapist's notes to
// the pipeline, saves the report in Drive and returns its content. The
// local draft is cleared only after the Drive save succeeds. The
// transition to processing happens inside the guard's critical
// section, so concurrent calls cannot both submit the pipeline.
func (c *Controller) Generate(ctx context.Context, sessionNotes, previousReport string) (string, error) {
	c.mu.Lock()
	if c.state == StateProcessing {
		c.mu.Unlock()
		return "", ErrBusy
	}
	if c.recording == nil {
		c.mu.Unlock()
		return "", errors.New("no recording captured")
	}
	rec := *c.recording
	c.commit(StateProcessing, "generating report")

	report, err := c.generator.Generate(ctx, GenerationInput{
		Audio:          rec,
		SessionNotes:   sessionNotes,
		PreviousReport: previousReport,
	})
	if err != nil {
		c.setState(StateError, err.Error())
		return "", err
	}

	name := fmt.Sprintf("Informe_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
	if _, err := c.store.Save(ctx, name, report); err != nil {
		// The report exists and quota was spent; surface it anyway.
		c.setState(StateError, "drive save failed")
		return report, err
	}

	c.mu.Lock()
	c.recording = nil
	c.mu.Unlock()
	if c.drafts != nil {
		_ = c.drafts.Clear()
	}
	c.setState(StateSuccess, "report saved")
	return report, nil
}

// SaveDraft persists notes plus the captured audio locally. Never
// touches quota or the remote store.
func (c *Controller) SaveDraft(sessionNotes string) error {
	if c.drafts == nil {
		return errors.New("draft store not configured")
	}
	c.mu.Lock()
	rec := c.recording
	c.mu.Unlock()
	return c.drafts.Save(sessionNotes, rec)
}

// RestoreDraft loads the last saved draft back into the workspace and
// returns the saved notes.
func (c *Controller) RestoreDraft() (string, error) {
	if c.drafts == nil {
		return "", errors.New("draft store not configured")
	}
	notes, rec, err := c.drafts.Load()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	if rec != nil {
		c.recording = rec
	}
	c.mu.Unlock()
	return notes, nil
}

// PreviousReports lists stored reports, newest first, for the
// evolution-analysis picker.
func (c *Controller) PreviousReports(ctx context.Context) ([]StoredReport, error) {
	return c.store.List(ctx)
}

// LoadPreviousReport fetches a stored report's content to feed the
// next generation as evolutionary context.
func (c *Controller) LoadPreviousReport(ctx context.Context, fileID string) (string, error) {
	return c.store.Read(ctx, fileID)
}
