package harness

import (
	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/lint"
)

// Delivery is one event seen by the applier during the run.
type Delivery struct {
	// AtMS is the fake clock offset from the start of the scenario.
	AtMS  int64       `json:"at_ms"`
	Type  event.Type  `json:"eventType"`
	Event event.Event `json:"-"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when no step failed unexpectedly and every assertion held.
	Pass bool `json:"pass"`

	// Errors holds step and assertion failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Log is the session log after the run.
	Log []event.Event `json:"log"`

	// Applied lists every delivery, resets included, in order.
	Applied []Delivery `json:"applied"`

	// Final is the canvas after the run.
	Final event.Snapshot `json:"final"`

	// Replaying and CurrentIndex are the engine state after the run.
	Replaying    bool `json:"replaying"`
	CurrentIndex int  `json:"current_index"`

	// Findings are the lint results for Log.
	Findings []lint.Finding `json:"findings"`
}

// NewResult creates a passing, empty result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Log:      []event.Event{},
		Applied:  []Delivery{},
		Findings: []lint.Finding{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AppliedTypes returns the event type of each delivery.
func (r *Result) AppliedTypes() []event.Type {
	out := make([]event.Type, len(r.Applied))
	for i, d := range r.Applied {
		out[i] = d.Type
	}
	return out
}
