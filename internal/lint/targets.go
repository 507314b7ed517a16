package lint

import (
	"fmt"

	"github.com/roach88/canvasreplay/internal/event"
)

// targets tracks which node and edge IDs exist as the log is walked, the
// way a canvas would on replay from a blank reset.
type targets struct {
	nodes map[string]bool
	edges map[string]bool
}

func newTargets() *targets {
	return &targets{nodes: map[string]bool{}, edges: map[string]bool{}}
}

// apply advances the model by e and describes why e would be a no-op,
// or returns "".
func (t *targets) apply(e event.Event) string {
	switch e.Type {
	case event.TypeSnapshot:
		snap, _ := event.PayloadAs[event.Snapshot](e)
		t.nodes = map[string]bool{}
		t.edges = map[string]bool{}
		for _, n := range snap.Nodes {
			t.nodes[n.ID] = true
		}
		for _, ed := range snap.Edges {
			t.edges[ed.ID] = true
		}
	case event.TypeNodeAdd:
		n, _ := event.PayloadAs[event.Node](e)
		t.nodes[n.ID] = true
	case event.TypeNodeUpdate:
		u, _ := event.PayloadAs[event.NodeUpdate](e)
		if !t.nodes[u.NodeID] {
			return fmt.Sprintf("node %q does not exist at this point", u.NodeID)
		}
	case event.TypeNodeDelete:
		d, _ := event.PayloadAs[event.NodeDelete](e)
		if !t.nodes[d.NodeID] {
			return fmt.Sprintf("node %q does not exist at this point", d.NodeID)
		}
		delete(t.nodes, d.NodeID)
	case event.TypeEdgeAdd:
		ed, _ := event.PayloadAs[event.Edge](e)
		t.edges[ed.ID] = true
	case event.TypeEdgeDelete:
		d, _ := event.PayloadAs[event.EdgeDelete](e)
		if !t.edges[d.EdgeID] {
			return fmt.Sprintf("edge %q does not exist at this point", d.EdgeID)
		}
		delete(t.edges, d.EdgeID)
	}
	return ""
}
