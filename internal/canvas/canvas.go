package canvas

import (
	"log/slog"

	"github.com/roach88/canvasreplay/internal/event"
)

// Canvas is the headless editor state.
//
// Canvas is not safe for concurrent use; it lives on the loop goroutine
// alongside the engine that replays into it.
type Canvas struct {
	nodes    []event.Node
	edges    []event.Edge
	viewport event.Viewport
	logger   *slog.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a blank canvas with the default viewport.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		nodes:    []event.Node{},
		edges:    []event.Edge{},
		viewport: event.DefaultViewport(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Nodes returns a copy of the node list in insertion order.
func (c *Canvas) Nodes() []event.Node {
	out := make([]event.Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Edges returns a copy of the edge list in insertion order.
func (c *Canvas) Edges() []event.Edge {
	out := make([]event.Edge, len(c.edges))
	copy(out, c.edges)
	return out
}

// Viewport returns the current viewport.
func (c *Canvas) Viewport() event.Viewport {
	return c.viewport
}

// Node looks up a node by ID.
func (c *Canvas) Node(id string) (event.Node, bool) {
	if i := c.nodeIndex(id); i >= 0 {
		return c.nodes[i], true
	}
	return event.Node{}, false
}

// Edge looks up an edge by ID.
func (c *Canvas) Edge(id string) (event.Edge, bool) {
	if i := c.edgeIndex(id); i >= 0 {
		return c.edges[i], true
	}
	return event.Edge{}, false
}

// SetNodes replaces the node list. A nil slice clears it.
func (c *Canvas) SetNodes(nodes []event.Node) {
	c.nodes = append(make([]event.Node, 0, len(nodes)), nodes...)
}

// SetEdges replaces the edge list. A nil slice clears it.
func (c *Canvas) SetEdges(edges []event.Edge) {
	c.edges = append(make([]event.Edge, 0, len(edges)), edges...)
}

// SetViewport replaces the viewport.
func (c *Canvas) SetViewport(v event.Viewport) {
	c.viewport = v
}

// Snapshot returns the whole canvas as a snapshot payload.
func (c *Canvas) Snapshot() event.Snapshot {
	return event.Snapshot{
		Nodes:    c.Nodes(),
		Edges:    c.Edges(),
		Viewport: c.viewport,
	}
}

// Reset empties nodes and edges. The viewport is kept, as the editor's
// clear control leaves the camera where it is.
func (c *Canvas) Reset() {
	c.nodes = []event.Node{}
	c.edges = []event.Edge{}
}

// upsertNode appends n, or replaces the node with the same ID in place.
func (c *Canvas) upsertNode(n event.Node) {
	if i := c.nodeIndex(n.ID); i >= 0 {
		c.nodes[i] = n
		return
	}
	c.nodes = append(c.nodes, n)
}

// upsertEdge appends e, or replaces the edge with the same ID in place.
func (c *Canvas) upsertEdge(e event.Edge) {
	if i := c.edgeIndex(e.ID); i >= 0 {
		c.edges[i] = e
		return
	}
	c.edges = append(c.edges, e)
}

func (c *Canvas) moveNode(id string, pos event.Position) bool {
	i := c.nodeIndex(id)
	if i < 0 {
		return false
	}
	c.nodes[i].Position = pos
	return true
}

func (c *Canvas) removeNode(id string) bool {
	i := c.nodeIndex(id)
	if i < 0 {
		return false
	}
	c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
	return true
}

func (c *Canvas) removeEdge(id string) bool {
	i := c.edgeIndex(id)
	if i < 0 {
		return false
	}
	c.edges = append(c.edges[:i], c.edges[i+1:]...)
	return true
}

func (c *Canvas) nodeIndex(id string) int {
	for i := range c.nodes {
		if c.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Canvas) edgeIndex(id string) int {
	for i := range c.edges {
		if c.edges[i].ID == id {
			return i
		}
	}
	return -1
}
