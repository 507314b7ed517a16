package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/metrics"
)

// playback is one replay run: the log copy it plays, the applier it feeds
// and the speed it was started with.
type playback struct {
	run     uint64
	events  []event.Event
	applier Applier
	speed   time.Duration
	ctx     context.Context
	span    trace.Span
}

// Start begins a replay run and reports whether it is still running when
// Start returns.
//
// On an empty log Start does nothing and returns false. It also returns
// false when the applier stops the run while handling the reset. Otherwise the
// engine enters PhaseReplaying with CurrentEventIndex 0, delivers the
// snapshot reset synchronously, and schedules the first log entry one
// speed interval later.
//
// Calling Start while already replaying stops the current run and starts
// over from the reset. Use Toggle for start/stop controls.
func (e *Engine) Start(applier Applier) bool {
	if e.log.Len() == 0 {
		e.logger.Debug("replay not started: log is empty")
		return false
	}

	if e.phase == PhaseReplaying {
		e.logger.Warn("replay started while replaying; restarting from reset",
			"run", e.current.run,
			"index", e.index,
		)
		e.halt(metrics.OutcomeRestarted)
	}

	e.runs++
	events := e.log.Events()
	ctx, span := e.tracer.Start(context.Background(), "replay.run",
		trace.WithAttributes(
			attribute.Int64("replay.run", int64(e.runs)),
			attribute.Int("replay.events", len(events)),
			attribute.Int64("replay.speed_ms", e.speed.Milliseconds()),
		),
	)

	pb := &playback{
		run:     e.runs,
		events:  events,
		applier: applier,
		speed:   e.speed,
		ctx:     ctx,
		span:    span,
	}

	e.current = pb
	e.phase = PhaseReplaying
	e.index = 0
	metrics.ReplayRuns.WithLabelValues(metrics.OutcomeStarted).Inc()
	e.logger.Info("replay started",
		"run", pb.run,
		"events", len(events),
		"speed", pb.speed,
	)

	e.deliver(pb, -1, event.Reset())
	if e.current != pb {
		// The applier stopped the replay during the reset.
		return false
	}

	e.cancel = e.sched.AfterFunc(pb.speed, func() { e.tick(pb, 0) })
	return true
}

// Stop cancels a running replay and reports whether one was running.
//
// The canvas and CurrentEventIndex keep whatever the last delivery left;
// nothing is rolled back. Stop while idle is a no-op.
func (e *Engine) Stop() bool {
	if e.phase != PhaseReplaying {
		return false
	}
	e.halt(metrics.OutcomeStopped)
	return true
}

// tick delivers entry i of pb and schedules the next one.
// CRITICAL: a tick that belongs to a stopped or replaced run returns
// without delivering.
func (e *Engine) tick(pb *playback, i int) {
	if e.current != pb {
		e.logger.Debug("stale replay tick discarded", "run", pb.run, "index", i)
		return
	}
	e.cancel = nil

	e.deliver(pb, i, pb.events[i])
	e.index = i
	if e.current != pb {
		// The applier stopped the replay; entry i still counts as applied.
		return
	}

	if i+1 >= len(pb.events) {
		e.finish(pb)
		return
	}
	e.cancel = e.sched.AfterFunc(pb.speed, func() { e.tick(pb, i+1) })
}

// deliver invokes the applier for one event inside an apply span.
// Panics are recovered so replay can continue (log and continue).
func (e *Engine) deliver(pb *playback, i int, ev event.Event) {
	_, span := e.tracer.Start(pb.ctx, "replay.apply",
		trace.WithAttributes(
			attribute.Int("replay.index", i),
			attribute.String("replay.event_type", string(ev.Type)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			applyErr := newApplyError(pb.run, i, ev.Type, r)
			span.RecordError(applyErr)
			span.SetStatus(codes.Error, "applier panicked")
			metrics.ApplyFailures.Inc()
			logApplyError(e.logger, applyErr)
		}
	}()

	pb.applier.Apply(ev)
	metrics.EventsApplied.WithLabelValues(string(ev.Type)).Inc()
	e.logger.Debug("event applied",
		"run", pb.run,
		"index", i,
		"event_type", ev.Type,
	)
}

// finish transitions to idle after the final entry.
func (e *Engine) finish(pb *playback) {
	e.current = nil
	e.cancel = nil
	e.phase = PhaseIdle

	pb.span.SetAttributes(attribute.String("replay.outcome", metrics.OutcomeCompleted))
	pb.span.End()
	metrics.ReplayRuns.WithLabelValues(metrics.OutcomeCompleted).Inc()
	e.logger.Info("replay completed", "run", pb.run, "events", len(pb.events))
}

// halt cancels the pending tick and detaches the current run.
func (e *Engine) halt(outcome string) {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	pb := e.current
	e.current = nil
	e.phase = PhaseIdle

	if pb == nil {
		return
	}
	pb.span.SetAttributes(
		attribute.String("replay.outcome", outcome),
		attribute.Int("replay.index", e.index),
	)
	pb.span.End()
	metrics.ReplayRuns.WithLabelValues(outcome).Inc()
	e.logger.Info("replay halted",
		"run", pb.run,
		"outcome", outcome,
		"index", e.index,
	)
}
