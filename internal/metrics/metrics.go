// Package metrics holds the Prometheus collectors for recording and replay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Replay run outcomes used as the "outcome" label of ReplayRuns.
const (
	OutcomeStarted   = "started"
	OutcomeCompleted = "completed"
	OutcomeStopped   = "stopped"
	OutcomeRestarted = "restarted"
)

var (
	// EventsRecorded counts events appended by the recorder, by event type.
	EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvasreplay_events_recorded_total",
		Help: "Total number of events appended to the session log",
	}, []string{"type"})

	// EventsDropped counts collaborator notifications ignored while replaying.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvasreplay_events_dropped_total",
		Help: "Number of change notifications not recorded because a replay was running",
	}, []string{"type"})

	// EventsApplied counts successful applier deliveries, by event type.
	EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvasreplay_events_applied_total",
		Help: "Total number of events delivered to an applier during replay",
	}, []string{"type"})

	// ApplyFailures counts applier panics recovered during replay.
	ApplyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canvasreplay_apply_failures_total",
		Help: "Number of applier invocations that panicked",
	})

	// ReplayRuns counts replay lifecycle transitions by outcome.
	ReplayRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvasreplay_replay_runs_total",
		Help: "Replay runs by outcome",
	}, []string{"outcome"})

	// LogSize is the current number of entries in the most recently touched log.
	LogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canvasreplay_log_size",
		Help: "Current number of events in the session log",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
