package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/canvasreplay/internal/canvas"
	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/lint"
	"github.com/roach88/canvasreplay/internal/session"
	"github.com/roach88/canvasreplay/internal/testutil"
)

// Harness runs one scenario against a fresh session.
type Harness struct {
	scenario *Scenario
	sched    *testutil.FakeScheduler
	applier  *testutil.RecordingApplier
	session  *session.Session
	logger   *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger for the session under test.
// Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Create a session on a fake scheduler at testutil.Epoch
//  2. Execute the steps, advancing the clock by step_ms before each
//  3. Run the replay clause, if any
//  4. Collect the log, deliveries, canvas and lint findings
//  5. Evaluate assertions
//
// An error is returned only when the run cannot be set up; step and
// assertion failures are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	sched := testutil.NewFakeScheduler()
	h := &Harness{
		scenario: scenario,
		sched:    sched,
		applier:  testutil.NewRecordingApplier(sched.Now),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	sessOpts := []session.Option{
		session.WithIDGenerator(testutil.NewFixedGenerator(scenario.SessionID)),
		session.WithNow(sched.Now),
		session.WithPositioner(session.GridPositioner(4, 150)),
		session.WithSpeed(time.Duration(scenario.SpeedMS) * time.Millisecond),
		session.WithObserver(h.applier),
		session.WithLogger(h.logger),
	}
	if scenario.UserID != "" {
		sessOpts = append(sessOpts, session.WithUserID(scenario.UserID))
	}
	h.session = session.New(sched, sessOpts...)

	linter, err := lint.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create linter: %w", err)
	}

	result := NewResult()

	stepMS := DefaultStepMS
	if scenario.StepMS != nil {
		stepMS = *scenario.StepMS
	}
	for i, step := range scenario.Steps {
		sched.Advance(time.Duration(stepMS) * time.Millisecond)
		err := h.executeStep(step)
		switch {
		case err != nil && !step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Action, err))
		case err == nil && step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected an error, got none", i, step.Action))
		}
	}

	if scenario.Replay != nil {
		h.runReplay(scenario.Replay)
	}

	h.collect(result, linter)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// Record performs a scenario's steps and returns the resulting log. The
// replay clause and assertions are ignored; a step failure is an error.
func Record(scenario *Scenario, opts ...Option) ([]event.Event, error) {
	steps := *scenario
	steps.Replay = nil
	steps.Assertions = nil

	result, err := Run(&steps, opts...)
	if err != nil {
		return nil, err
	}
	if !result.Pass {
		return nil, fmt.Errorf("record %s: %s", scenario.Name, strings.Join(result.Errors, "; "))
	}
	return result.Log, nil
}

// runReplay starts a replay and drives the clock until it completes or
// StopAfter log entries have been applied.
func (h *Harness) runReplay(rc *ReplayClause) {
	if !h.session.StartReplay() {
		return
	}
	speed := h.session.Engine().State().ReplaySpeed

	if rc.StopAfter != nil {
		h.sched.Advance(time.Duration(*rc.StopAfter) * speed)
		h.session.StopReplay()
		return
	}
	h.sched.RunUntilIdle(h.session.Engine().Len() + 1)
}

func (h *Harness) collect(result *Result, linter *lint.Linter) {
	st := h.session.State()
	result.Log = st.Events
	result.Replaying = st.IsReplaying
	result.CurrentIndex = st.CurrentEventIndex
	result.Final = h.session.Canvas().Snapshot()
	result.Findings = linter.Check(st.Events)

	for _, call := range h.applier.Calls() {
		result.Applied = append(result.Applied, Delivery{
			AtMS:  call.At.Milliseconds(),
			Type:  call.Event.Type,
			Event: call.Event,
		})
	}
}

// executeStep performs one editor action on the session.
func (h *Harness) executeStep(step Step) error {
	s := h.session
	args := stepArgs(step.Args)

	switch step.Action {
	case ActionAddNode:
		_, err := s.AddNode()
		return err

	case ActionAddNodeAt:
		_, err := s.AddNodeAt(event.Position{X: args.num("x"), Y: args.num("y")})
		return err

	case ActionDragNode:
		id := args.str("id")
		if _, ok := s.Canvas().Node(id); !ok {
			return fmt.Errorf("node %q not found", id)
		}
		target := event.Position{X: args.num("x"), Y: args.num("y")}
		s.NodesChange([]canvas.NodeChange{{Kind: canvas.ChangePosition, ID: id, Position: &target, Dragging: true}})
		s.NodesChange([]canvas.NodeChange{{Kind: canvas.ChangePosition, ID: id, Position: &target}})
		return nil

	case ActionRemoveNode:
		s.NodesChange([]canvas.NodeChange{{Kind: canvas.ChangeRemove, ID: args.str("id")}})
		return nil

	case ActionConnect:
		_, ok := s.Connect(canvas.Connection{
			Source:       args.str("source"),
			Target:       args.str("target"),
			SourceHandle: args.str("source_handle"),
			TargetHandle: args.str("target_handle"),
		})
		if !ok {
			return fmt.Errorf("connection %s -> %s refused", args.str("source"), args.str("target"))
		}
		return nil

	case ActionRemoveEdge:
		s.EdgesChange([]canvas.EdgeChange{{Kind: canvas.ChangeRemove, ID: args.str("id")}})
		return nil

	case ActionViewport:
		s.ViewportChange(event.Viewport{X: args.num("x"), Y: args.num("y"), Zoom: args.num("zoom")})
		return nil

	case ActionRecord:
		s.Recorder().Record(event.Type(args.str("event_type")), step.Args["data"])
		return nil

	case ActionAdvance:
		h.sched.Advance(time.Duration(args.whole("ms")) * time.Millisecond)
		return nil

	case ActionToggleReplay:
		s.ToggleReplay()
		return nil

	case ActionStopReplay:
		if !s.StopReplay() {
			return fmt.Errorf("no replay running")
		}
		return nil

	case ActionSetSpeed:
		return s.SetSpeed(time.Duration(args.whole("ms")) * time.Millisecond)

	case ActionClear:
		return s.Clear()

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

// stepArgs reads loosely typed YAML arguments.
type stepArgs map[string]any

func (a stepArgs) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a stepArgs) num(key string) float64 {
	switch v := a[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func (a stepArgs) whole(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
