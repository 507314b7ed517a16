package recorder

import (
	"github.com/roach88/canvasreplay/internal/canvas"
	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/metrics"
)

// gated reports whether notifications must be dropped because a replay is
// driving the canvas.
func (r *Recorder) gated(t event.Type) bool {
	if !r.sink.IsReplaying() {
		return false
	}
	metrics.EventsDropped.WithLabelValues(string(t)).Inc()
	r.logger.Debug("notification dropped during replay", "event_type", t)
	return true
}

// ObserveNodeChanges records the settled end of each drag as node_update
// and each removal as node_delete. Intermediate drag positions are not
// recorded. Returns the number of events recorded.
func (r *Recorder) ObserveNodeChanges(changes []canvas.NodeChange) int {
	n := 0
	for _, ch := range changes {
		switch {
		case ch.Settled() && ch.Position != nil:
			if r.gated(event.TypeNodeUpdate) {
				continue
			}
			r.Record(event.TypeNodeUpdate, event.NodeUpdate{NodeID: ch.ID, Position: *ch.Position})
			n++
		case ch.Kind == canvas.ChangeRemove:
			if r.gated(event.TypeNodeDelete) {
				continue
			}
			r.Record(event.TypeNodeDelete, event.NodeDelete{NodeID: ch.ID})
			n++
		}
	}
	return n
}

// ObserveEdgeChanges records each edge removal as edge_delete.
// Returns the number of events recorded.
func (r *Recorder) ObserveEdgeChanges(changes []canvas.EdgeChange) int {
	n := 0
	for _, ch := range changes {
		if ch.Kind != canvas.ChangeRemove {
			continue
		}
		if r.gated(event.TypeEdgeDelete) {
			continue
		}
		r.Record(event.TypeEdgeDelete, event.EdgeDelete{EdgeID: ch.ID})
		n++
	}
	return n
}

// ObserveNodeAdded records a created node as node_add.
func (r *Recorder) ObserveNodeAdded(n event.Node) bool {
	if r.gated(event.TypeNodeAdd) {
		return false
	}
	r.Record(event.TypeNodeAdd, n)
	return true
}

// ObserveEdgeAdded records a created edge as edge_add.
func (r *Recorder) ObserveEdgeAdded(e event.Edge) bool {
	if r.gated(event.TypeEdgeAdd) {
		return false
	}
	r.Record(event.TypeEdgeAdd, e)
	return true
}

// ObserveViewport records a viewport change as viewport_change.
func (r *Recorder) ObserveViewport(v event.Viewport) bool {
	if r.gated(event.TypeViewportChange) {
		return false
	}
	r.Record(event.TypeViewportChange, v)
	return true
}
