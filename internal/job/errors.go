package job

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySelection = errors.New("selection is empty")
	ErrRunActive      = errors.New("a run is already in progress")
	ErrInvalidPhase   = errors.New("operation not allowed in current phase")
)

// SetupError reports a job that failed before its stream was established.
// The session is back in [Select] and no run was recorded.
type SetupError struct {
	StatusCode int
	Err        error
}

func (e *SetupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to start extraction (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to start extraction: %v", e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// StreamError reports a connection that failed after streaming began.
type StreamError struct {
	Frames  int // Frames applied before the failure
	Partial int // Bytes of an unterminated frame that were dropped
	Err     error
}

func (e *StreamError) Error() string {
	if e.Partial > 0 {
		return fmt.Sprintf("extraction stream failed after %d frame(s), dropping %d byte(s) of an unfinished frame: %v", e.Frames, e.Partial, e.Err)
	}
	return fmt.Sprintf("extraction stream failed after %d frame(s): %v", e.Frames, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
