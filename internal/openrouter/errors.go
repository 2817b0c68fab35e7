package openrouter

import (
	"errors"
	"fmt"
)

const (
	OpTranscription = "transcription"
	OpReport        = "report generation"
)

var (
	ErrTranscriptionInvalid = errors.New("invalid response from transcription service")
	ErrReportInvalid        = errors.New("invalid response from report generation service")
)

// ServiceError reports a failed call to the AI gateway: either a non-2xx
// reply (Status set) or a transport failure (Err set).
type ServiceError struct {
	Op     string
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("AI service failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("AI service failed during %s. Status: %d", e.Op, e.Status)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
