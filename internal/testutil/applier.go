package testutil

import (
	"sync"
	"time"

	"github.com/roach88/canvasreplay/internal/event"
)

// Applied is one delivery observed by a RecordingApplier.
type Applied struct {
	Event event.Event
	// At is the clock offset of the delivery from the applier's creation.
	At time.Duration
}

// RecordingApplier captures every event delivered to it, with timing.
//
// It implements engine.Applier. Deliveries are recorded in call order so
// tests can assert on replay order and cadence.
//
// Thread-safety: RecordingApplier is safe for concurrent use via internal mutex.
type RecordingApplier struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	calls []Applied

	// OnApply, if set, runs after each delivery is recorded.
	OnApply func(index int, e event.Event)
}

// NewRecordingApplier creates an applier timed by now.
func NewRecordingApplier(now func() time.Time) *RecordingApplier {
	return &RecordingApplier{now: now, start: now()}
}

// Apply records e.
func (r *RecordingApplier) Apply(e event.Event) {
	r.mu.Lock()
	r.calls = append(r.calls, Applied{Event: e, At: r.now().Sub(r.start)})
	idx := len(r.calls) - 1
	hook := r.OnApply
	r.mu.Unlock()

	if hook != nil {
		hook(idx, e)
	}
}

// Calls returns a copy of every recorded delivery.
func (r *RecordingApplier) Calls() []Applied {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Applied, len(r.calls))
	copy(out, r.calls)
	return out
}

// Types returns the event type of each delivery in order.
func (r *RecordingApplier) Types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Event.Type
	}
	return out
}

// Len returns the number of deliveries.
func (r *RecordingApplier) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
