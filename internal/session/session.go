// Package session is the editor application around the replay core.
//
// A Session owns the canvas, the engine holding the log and the recorder
// stamping new entries. Its methods are the editor's controls and the
// rendering collaborator's callbacks: each one mutates the canvas and
// forwards the gesture to the recorder. Replay feeds the canvas through
// Canvas.Apply, which bypasses those callbacks entirely.
//
// A Session is not safe for concurrent use. Drive it from one goroutine,
// normally a loop.Loop that is also its scheduler.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/canvasreplay/internal/canvas"
	"github.com/roach88/canvasreplay/internal/engine"
	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/recorder"
)

// ErrReplaying is returned by controls that are disabled during replay.
var ErrReplaying = errors.New("not allowed while replaying")

// DefaultNodeType is the type given to nodes created by AddNode.
const DefaultNodeType = "default"

// Positioner picks the position of the n-th created node.
type Positioner func(n int) event.Position

// RandomPositioner scatters nodes over the 400x400 square at (100, 100).
func RandomPositioner(int) event.Position {
	return event.Position{
		X: rand.Float64()*400 + 100,
		Y: rand.Float64()*400 + 100,
	}
}

// GridPositioner lays nodes out left to right, cols per row, spaced by step.
// It is deterministic, for scripted sessions.
func GridPositioner(cols int, step float64) Positioner {
	if cols <= 0 {
		cols = 1
	}
	return func(n int) event.Position {
		return event.Position{
			X: 100 + float64(n%cols)*step,
			Y: 100 + float64(n/cols)*step,
		}
	}
}

// Session is one editing session.
type Session struct {
	canvas *canvas.Canvas
	engine *engine.Engine
	rec    *recorder.Recorder
	logger *slog.Logger

	now        func() time.Time
	positioner Positioner
	observers  []engine.Applier
	nextID     int

	engineOpts   []engine.Option
	recorderOpts []recorder.Option
}

// Option configures a Session.
type Option func(*Session)

// WithSessionID sets the session ID recorded on every event.
func WithSessionID(id string) Option {
	return func(s *Session) { s.recorderOpts = append(s.recorderOpts, recorder.WithSessionID(id)) }
}

// WithIDGenerator sets the session ID generator.
func WithIDGenerator(g recorder.IDGenerator) Option {
	return func(s *Session) { s.recorderOpts = append(s.recorderOpts, recorder.WithIDGenerator(g)) }
}

// WithUserID sets the user ID recorded on every event.
func WithUserID(id string) Option {
	return func(s *Session) { s.recorderOpts = append(s.recorderOpts, recorder.WithUserID(id)) }
}

// WithNow sets the clock for timestamps and edge IDs.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPositioner sets how AddNode places nodes. Defaults to RandomPositioner.
func WithPositioner(p Positioner) Option {
	return func(s *Session) {
		if p != nil {
			s.positioner = p
		}
	}
}

// WithSpeed sets the replay speed.
func WithSpeed(d time.Duration) Option {
	return func(s *Session) { s.engineOpts = append(s.engineOpts, engine.WithSpeed(d)) }
}

// WithTracer sets the tracer for replay spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) { s.engineOpts = append(s.engineOpts, engine.WithTracer(t)) }
}

// WithObserver adds an applier that sees every replayed event after the
// canvas has applied it, e.g. a progress printer.
func WithObserver(a engine.Applier) Option {
	return func(s *Session) {
		if a != nil {
			s.observers = append(s.observers, a)
		}
	}
}

// WithLogger sets the logger for the session and its components.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty session scheduled by sched.
func New(sched engine.Scheduler, opts ...Option) *Session {
	s := &Session{
		logger:     slog.Default(),
		now:        time.Now,
		positioner: RandomPositioner,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.canvas = canvas.New(canvas.WithLogger(s.logger))
	s.engine = engine.New(sched, append(s.engineOpts, engine.WithLogger(s.logger))...)
	s.rec = recorder.New(s.engine, append(s.recorderOpts,
		recorder.WithNow(s.now),
		recorder.WithLogger(s.logger),
	)...)
	return s
}

// Canvas returns the session's canvas.
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }

// Engine returns the session's replay engine.
func (s *Session) Engine() *engine.Engine { return s.engine }

// Recorder returns the session's recorder.
func (s *Session) Recorder() *recorder.Recorder { return s.rec }

// ID returns the session ID.
func (s *Session) ID() string { return s.rec.SessionID() }

// AddNode creates a node at the positioner's next position.
func (s *Session) AddNode() (event.Node, error) {
	return s.AddNodeAt(s.positioner(s.nextID))
}

// AddNodeAt creates the next node at pos and records node_add.
// Node IDs count up from node_0 and labels from "Node 1".
func (s *Session) AddNodeAt(pos event.Position) (event.Node, error) {
	if s.engine.IsReplaying() {
		return event.Node{}, fmt.Errorf("add node: %w", ErrReplaying)
	}

	n := event.Node{
		ID:       fmt.Sprintf("node_%d", s.nextID),
		Type:     DefaultNodeType,
		Position: pos,
		Data:     map[string]any{"label": fmt.Sprintf("Node %d", s.nextID+1)},
	}
	s.nextID++

	s.canvas.AddNode(n)
	s.rec.ObserveNodeAdded(n)
	return n, nil
}

// NodesChange handles a node change batch from the rendering collaborator.
func (s *Session) NodesChange(changes []canvas.NodeChange) {
	s.canvas.ApplyNodeChanges(changes)
	s.rec.ObserveNodeChanges(changes)
}

// EdgesChange handles an edge change batch from the rendering collaborator.
func (s *Session) EdgesChange(changes []canvas.EdgeChange) {
	s.canvas.ApplyEdgeChanges(changes)
	s.rec.ObserveEdgeChanges(changes)
}

// Connect creates an edge for a completed connect gesture and records
// edge_add. Edge IDs are edge_<unix ms>, bumped until unused. A connection
// duplicating an existing edge is ignored and not recorded.
func (s *Session) Connect(c canvas.Connection) (event.Edge, bool) {
	ms := s.now().UnixMilli()
	id := fmt.Sprintf("edge_%d", ms)
	for {
		if _, taken := s.canvas.Edge(id); !taken {
			break
		}
		ms++
		id = fmt.Sprintf("edge_%d", ms)
	}

	e := c.Edge(id)
	if !s.canvas.AddEdge(e) {
		s.logger.Debug("connection ignored", "source", c.Source, "target", c.Target)
		return event.Edge{}, false
	}
	s.rec.ObserveEdgeAdded(e)
	return e, true
}

// ViewportChange handles a pan or zoom from the rendering collaborator.
func (s *Session) ViewportChange(v event.Viewport) {
	s.canvas.SetViewport(v)
	s.rec.ObserveViewport(v)
}

// ToggleReplay is the replay button: it stops a running replay or starts
// one into the canvas. Returns whether a replay is running afterwards.
func (s *Session) ToggleReplay() bool {
	return s.engine.Toggle(s.applier())
}

// StartReplay starts (or restarts) a replay into the canvas.
func (s *Session) StartReplay() bool {
	return s.engine.Start(s.applier())
}

// StopReplay stops a running replay.
func (s *Session) StopReplay() bool {
	return s.engine.Stop()
}

// SetSpeed sets the delay between replayed events for later runs.
func (s *Session) SetSpeed(d time.Duration) error {
	return s.engine.SetSpeed(d)
}

// Clear empties the canvas and the log and restarts node numbering.
func (s *Session) Clear() error {
	if s.engine.IsReplaying() {
		return fmt.Errorf("clear: %w", ErrReplaying)
	}
	s.canvas.Reset()
	s.engine.Clear()
	s.nextID = 0
	return nil
}

// State returns the engine's replay state.
func (s *Session) State() engine.State {
	return s.engine.State()
}

func (s *Session) applier() engine.Applier {
	if len(s.observers) == 0 {
		return s.canvas
	}
	return engine.ApplierFunc(func(e event.Event) {
		s.canvas.Apply(e)
		for _, obs := range s.observers {
			obs.Apply(e)
		}
	})
}
