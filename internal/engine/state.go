package engine

import (
	"time"

	"github.com/roach88/canvasreplay/internal/event"
)

// Phase is the replay state machine phase.
type Phase int

const (
	// PhaseIdle is the initial and terminal phase.
	PhaseIdle Phase = iota
	// PhaseReplaying means deliveries are in progress.
	PhaseReplaying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReplaying:
		return "replaying"
	default:
		return "unknown"
	}
}

// State is the engine's visible snapshot.
type State struct {
	// Events is a copy of the log.
	Events []event.Event

	// IsReplaying is true while a run is in progress.
	IsReplaying bool

	// ReplaySpeed is the delay between deliveries.
	ReplaySpeed time.Duration

	// CurrentEventIndex is the log index most recently applied. It is only
	// meaningful while replaying; after a stop it keeps its last value.
	CurrentEventIndex int
}

// Progress returns the 1-based position of the current delivery and the
// log length, as displayed by the editor ("Replaying: 3/5").
func (s State) Progress() (current, total int) {
	return s.CurrentEventIndex + 1, len(s.Events)
}
