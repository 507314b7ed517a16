// Package recorder turns editor mutations into log entries.
//
// Record appends unconditionally. The Observe adapters sit between the
// rendering collaborator and Record: they translate change notifications
// into events and drop them while a replay is running, so replay-driven
// canvas updates are never fed back into the log.
package recorder

import (
	"log/slog"
	"time"

	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/metrics"
)

// Sink is the log a Recorder appends to. *engine.Engine satisfies it.
type Sink interface {
	Append(e event.Event) int
	IsReplaying() bool
}

// Recorder stamps and appends events to a Sink.
//
// Recorder is not safe for concurrent use; call it from the goroutine that
// owns the sink.
type Recorder struct {
	sink      Sink
	sessionID string
	userID    string
	now       func() time.Time
	logger    *slog.Logger

	ids  IDGenerator
	last int64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSessionID sets the session ID stamped on every event.
func WithSessionID(id string) Option {
	return func(r *Recorder) { r.sessionID = id }
}

// WithIDGenerator sets the generator for the session ID when none is
// given with WithSessionID. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Recorder) {
		if g != nil {
			r.ids = g
		}
	}
}

// WithUserID sets the user ID stamped on every event.
func WithUserID(id string) Option {
	return func(r *Recorder) { r.userID = id }
}

// WithNow sets the clock used for timestamps. Defaults to time.Now.
func WithNow(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Recorder appending to sink.
func New(sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		sink:   sink,
		now:    time.Now,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sessionID == "" {
		r.sessionID = r.ids.Generate()
	}
	return r
}

// SessionID returns the session ID stamped on recorded events.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Record appends an event of type t carrying data and returns its index.
//
// Record never fails and performs no validation: malformed payloads are
// kept and left for the applier to ignore. Every call produces exactly
// one entry. Timestamps are unix milliseconds and never decrease, even if
// the wall clock steps back.
func (r *Recorder) Record(t event.Type, data any) int {
	ts := r.now().UnixMilli()
	if ts < r.last {
		ts = r.last
	}
	r.last = ts

	idx := r.sink.Append(event.Event{
		Timestamp: ts,
		Type:      t,
		Data:      data,
		SessionID: r.sessionID,
		UserID:    r.userID,
	})

	metrics.EventsRecorded.WithLabelValues(string(t)).Inc()
	r.logger.Debug("event recorded",
		"index", idx,
		"event_type", t,
		"timestamp", ts,
		"session_id", r.sessionID,
	)
	return idx
}
