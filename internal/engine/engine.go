package engine

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/metrics"
)

// DefaultSpeed is the default delay between successive deliveries.
const DefaultSpeed = time.Second

// tracerName identifies spans emitted by the engine.
const tracerName = "github.com/roach88/canvasreplay/internal/engine"

// Applier interprets one event as a canvas mutation.
//
// Apply is called synchronously on the engine's goroutine, once per event,
// never concurrently with itself. It must treat unknown tags, malformed
// payloads and missing targets as no-ops.
//
// An Applier may call Stop or Toggle on the engine and may record events;
// it must not call Start on the engine that is delivering to it.
type Applier interface {
	Apply(e event.Event)
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(e event.Event)

// Apply calls f(e).
func (f ApplierFunc) Apply(e event.Event) {
	f(e)
}

// Engine owns the session log and the replay state machine.
//
// Engine is not safe for concurrent use. All calls, and all callbacks from
// its Scheduler, must happen on a single goroutine (see package loop).
//
// INVARIANTS:
//   - at most one scheduled tick is pending
//   - current != nil exactly when phase == PhaseReplaying
//   - the log is mutated only by Append and Clear
type Engine struct {
	log    *event.Log
	sched  Scheduler
	speed  time.Duration
	logger *slog.Logger
	tracer trace.Tracer

	phase   Phase
	index   int
	runs    uint64
	current *playback
	cancel  func() bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSpeed sets the delay between deliveries.
// Non-positive values are ignored and DefaultSpeed is kept.
func WithSpeed(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.speed = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer used for replay spans.
// Defaults to the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an idle Engine with an empty log.
func New(sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		log:    event.NewLog(),
		sched:  sched,
		speed:  DefaultSpeed,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		phase:  PhaseIdle,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Append adds an event to the end of the log and returns its index.
// Appending never fails and is allowed in any phase.
func (e *Engine) Append(ev event.Event) int {
	idx := e.log.Append(ev)
	metrics.LogSize.Set(float64(e.log.Len()))
	return idx
}

// Clear empties the log.
//
// Clear does not touch the replay phase, the current index or the speed.
// A replay in progress keeps playing from the copy it took at Start; stop
// it first if the canvas must not change after clearing.
func (e *Engine) Clear() {
	n := e.log.Len()
	e.log.Clear()
	metrics.LogSize.Set(0)

	if e.phase == PhaseReplaying {
		e.logger.Warn("log cleared during replay; playback continues from its start-time copy",
			"cleared", n,
			"index", e.index,
		)
		return
	}
	e.logger.Debug("log cleared", "cleared", n)
}

// Len returns the number of logged events.
func (e *Engine) Len() int {
	return e.log.Len()
}

// Events returns a copy of the log.
func (e *Engine) Events() []event.Event {
	return e.log.Events()
}

// IsReplaying reports whether a replay is running.
func (e *Engine) IsReplaying() bool {
	return e.phase == PhaseReplaying
}

// Phase returns the current state machine phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Speed returns the delay used for the next replay run.
func (e *Engine) Speed() time.Duration {
	return e.speed
}

// SetSpeed sets the delay used by subsequent replay runs. A run already in
// progress keeps the speed it started with.
func (e *Engine) SetSpeed(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("set speed %s: %w", d, ErrInvalidSpeed)
	}
	e.speed = d
	return nil
}

// State returns a read-only snapshot for driving UI controls.
func (e *Engine) State() State {
	return State{
		Events:            e.log.Events(),
		IsReplaying:       e.phase == PhaseReplaying,
		ReplaySpeed:       e.speed,
		CurrentEventIndex: e.index,
	}
}

// Toggle is the single start/stop control: it stops a running replay, or
// starts one when idle. Returns whether a replay is running afterwards.
func (e *Engine) Toggle(applier Applier) bool {
	if e.phase == PhaseReplaying {
		e.Stop()
		return false
	}
	return e.Start(applier)
}
