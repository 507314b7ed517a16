package canvas

import "github.com/roach88/canvasreplay/internal/event"

// ChangeKind tags a change reported by the rendering collaborator.
type ChangeKind string

const (
	ChangePosition ChangeKind = "position"
	ChangeRemove   ChangeKind = "remove"
	ChangeAdd      ChangeKind = "add"
)

// NodeChange is one entry of a node change batch.
//
// Position changes arrive continuously while a node is dragged, with
// Dragging set; the final change of a drag has Dragging false. Position
// may be nil on the final change when the collaborator only reports that
// the drag ended.
type NodeChange struct {
	Kind     ChangeKind      `json:"type" yaml:"type"`
	ID       string          `json:"id" yaml:"id"`
	Position *event.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Dragging bool            `json:"dragging,omitempty" yaml:"dragging,omitempty"`
	Item     *event.Node     `json:"item,omitempty" yaml:"item,omitempty"`
}

// Settled reports whether c is the position change that ends a drag.
func (c NodeChange) Settled() bool {
	return c.Kind == ChangePosition && !c.Dragging
}

// EdgeChange is one entry of an edge change batch.
type EdgeChange struct {
	Kind ChangeKind  `json:"type" yaml:"type"`
	ID   string      `json:"id" yaml:"id"`
	Item *event.Edge `json:"item,omitempty" yaml:"item,omitempty"`
}

// Connection is a completed connect gesture between two nodes.
type Connection struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"source_handle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"target_handle,omitempty"`
}

// Edge builds the edge record for c. Empty handles become null.
func (c Connection) Edge(id string) event.Edge {
	return event.Edge{
		ID:           id,
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: optional(c.SourceHandle),
		TargetHandle: optional(c.TargetHandle),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ApplyNodeChanges folds a change batch into the node list.
// Changes naming unknown nodes are ignored.
func (c *Canvas) ApplyNodeChanges(changes []NodeChange) {
	for _, ch := range changes {
		switch ch.Kind {
		case ChangePosition:
			if ch.Position != nil {
				c.moveNode(ch.ID, *ch.Position)
			}
		case ChangeRemove:
			c.removeNode(ch.ID)
		case ChangeAdd:
			if ch.Item != nil && ch.Item.ID != "" {
				c.upsertNode(*ch.Item)
			}
		default:
			c.logger.Debug("ignoring node change", "kind", ch.Kind, "id", ch.ID)
		}
	}
}

// ApplyEdgeChanges folds a change batch into the edge list.
func (c *Canvas) ApplyEdgeChanges(changes []EdgeChange) {
	for _, ch := range changes {
		switch ch.Kind {
		case ChangeRemove:
			c.removeEdge(ch.ID)
		case ChangeAdd:
			if ch.Item != nil && ch.Item.ID != "" {
				c.upsertEdge(*ch.Item)
			}
		default:
			c.logger.Debug("ignoring edge change", "kind", ch.Kind, "id", ch.ID)
		}
	}
}

// AddNode inserts n. Returns false if n has no ID.
func (c *Canvas) AddNode(n event.Node) bool {
	if n.ID == "" {
		return false
	}
	c.upsertNode(n)
	return true
}

// AddEdge inserts e unless an edge already joins the same endpoints and
// handles. Returns whether e was added.
func (c *Canvas) AddEdge(e event.Edge) bool {
	if e.ID == "" || e.Source == "" || e.Target == "" {
		return false
	}
	for _, existing := range c.edges {
		if sameConnection(existing, e) {
			return false
		}
	}
	c.upsertEdge(e)
	return true
}

func sameConnection(a, b event.Edge) bool {
	return a.Source == b.Source &&
		a.Target == b.Target &&
		deref(a.SourceHandle) == deref(b.SourceHandle) &&
		deref(a.TargetHandle) == deref(b.TargetHandle)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
