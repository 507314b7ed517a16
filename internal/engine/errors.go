package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/canvasreplay/internal/event"
)

// ErrInvalidSpeed is returned when a replay speed is not positive.
var ErrInvalidSpeed = errors.New("replay speed must be positive")

// ApplyError describes an applier failure during replay.
//
// Apply errors are never returned to callers: replay continues past them.
// They are logged and recorded on the replay span.
type ApplyError struct {
	// Run identifies the replay run.
	Run uint64

	// Index is the log index of the event, or -1 for the snapshot reset.
	Index int

	// Type is the event type being applied.
	Type event.Type

	// Cause is the recovered panic value wrapped as an error.
	Cause error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("apply %s reset (run=%d): %v", e.Type, e.Run, e.Cause)
	}
	return fmt.Sprintf("apply %s at index %d (run=%d): %v", e.Type, e.Index, e.Run, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// IsApplyError returns true if err is, or wraps, an ApplyError.
func IsApplyError(err error) bool {
	var ae *ApplyError
	return errors.As(err, &ae)
}

// newApplyError converts a recovered panic value into an ApplyError.
func newApplyError(run uint64, index int, typ event.Type, recovered any) *ApplyError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("panic: %v", recovered)
	}
	return &ApplyError{Run: run, Index: index, Type: typ, Cause: cause}
}

// logApplyError logs an applier failure with enough context to locate the
// offending entry in the log.
func logApplyError(logger *slog.Logger, err *ApplyError) {
	logger.Error("applier failed, continuing replay",
		"run", err.Run,
		"index", err.Index,
		"event_type", err.Type,
		"error", err.Cause,
	)
}
