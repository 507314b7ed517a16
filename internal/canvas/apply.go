package canvas

import "github.com/roach88/canvasreplay/internal/event"

// Apply interprets one logged event as a canvas mutation.
//
// Canvas satisfies engine.Applier. Unknown tags, edge_update, undecodable
// payloads, adds without an id and missing targets are no-ops: replay must
// never halt on a single bad entry.
func (c *Canvas) Apply(e event.Event) {
	applied := c.apply(e)
	if !applied {
		c.logger.Debug("event ignored by canvas",
			"event_type", e.Type,
			"timestamp", e.Timestamp,
		)
	}
}

func (c *Canvas) apply(e event.Event) bool {
	switch e.Type {
	case event.TypeSnapshot:
		snap, ok := event.PayloadAs[event.Snapshot](e)
		if !ok {
			return false
		}
		c.SetNodes(snap.Nodes)
		c.SetEdges(snap.Edges)
		if snap.Viewport.Zoom == 0 {
			// A snapshot without a viewport resets to the default camera.
			snap.Viewport = event.DefaultViewport()
		}
		c.SetViewport(snap.Viewport)
		return true

	case event.TypeNodeAdd:
		n, ok := event.PayloadAs[event.Node](e)
		if !ok || n.ID == "" {
			return false
		}
		c.upsertNode(n)
		return true

	case event.TypeNodeUpdate:
		u, ok := event.PayloadAs[event.NodeUpdate](e)
		if !ok {
			return false
		}
		return c.moveNode(u.NodeID, u.Position)

	case event.TypeNodeDelete:
		d, ok := event.PayloadAs[event.NodeDelete](e)
		if !ok {
			return false
		}
		return c.removeNode(d.NodeID)

	case event.TypeEdgeAdd:
		ed, ok := event.PayloadAs[event.Edge](e)
		if !ok || ed.ID == "" {
			return false
		}
		c.upsertEdge(ed)
		return true

	case event.TypeEdgeDelete:
		d, ok := event.PayloadAs[event.EdgeDelete](e)
		if !ok {
			return false
		}
		return c.removeEdge(d.EdgeID)

	case event.TypeViewportChange:
		v, ok := event.PayloadAs[event.Viewport](e)
		if !ok {
			return false
		}
		c.SetViewport(v)
		return true

	default:
		// edge_update is reserved and never produced.
		return false
	}
}
