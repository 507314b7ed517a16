package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/canvasreplay/internal/event"
)

//go:embed schema.cue
var schemaCUE string

// Defaults applied to omitted scenario fields.
const (
	DefaultSessionID = "test-session"
	DefaultSpeedMS   = 1000
	DefaultStepMS    = 100
)

// Scenario is a scripted editing session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// SessionID is stamped on every event. Defaults to DefaultSessionID.
	SessionID string `yaml:"session_id,omitempty"`

	// UserID is stamped on every event when set.
	UserID string `yaml:"user_id,omitempty"`

	// SpeedMS is the replay speed in milliseconds. Defaults to DefaultSpeedMS.
	SpeedMS int `yaml:"speed_ms,omitempty"`

	// StepMS is how far the clock advances before each step, so recorded
	// timestamps differ. Nil means DefaultStepMS; 0 keeps the clock still.
	StepMS *int `yaml:"step_ms,omitempty"`

	// Steps are the editor actions, in order.
	Steps []Step `yaml:"steps"`

	// Replay, if set, starts a replay after the steps and runs it to
	// completion or until StopAfter log entries have been delivered.
	Replay *ReplayClause `yaml:"replay,omitempty"`

	// Assertions are checked once the run is over.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one editor action.
type Step struct {
	Action string         `yaml:"action"`
	Args   map[string]any `yaml:"args,omitempty"`
	// ExpectError marks a step the session must refuse.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// ReplayClause configures the replay run at the end of a scenario.
type ReplayClause struct {
	// StopAfter stops the replay once this many log entries have been
	// applied. Nil plays the whole log.
	StopAfter *int `yaml:"stop_after,omitempty"`
}

// Assertion checks the outcome of a run.
type Assertion struct {
	Type       string          `yaml:"type"`
	Count      *int            `yaml:"count,omitempty"`
	Types      []string        `yaml:"types,omitempty"`
	Nodes      []NodeExpect    `yaml:"nodes,omitempty"`
	Viewport   *event.Viewport `yaml:"viewport,omitempty"`
	Index      *int            `yaml:"index,omitempty"`
	Value      *bool           `yaml:"value,omitempty"`
	IntervalMS int             `yaml:"interval_ms,omitempty"`
}

// NodeExpect is one expected node in final_nodes. Nil coordinates are
// not checked.
type NodeExpect struct {
	ID string   `yaml:"id"`
	X  *float64 `yaml:"x,omitempty"`
	Y  *float64 `yaml:"y,omitempty"`
}

// Step actions.
const (
	ActionAddNode      = "add_node"
	ActionAddNodeAt    = "add_node_at"
	ActionDragNode     = "drag_node"
	ActionRemoveNode   = "remove_node"
	ActionConnect      = "connect"
	ActionRemoveEdge   = "remove_edge"
	ActionViewport     = "viewport"
	ActionRecord       = "record"
	ActionAdvance      = "advance"
	ActionToggleReplay = "toggle_replay"
	ActionStopReplay   = "stop_replay"
	ActionSetSpeed     = "set_speed"
	ActionClear        = "clear"
)

// Assertion types.
const (
	AssertLogCount       = "log_count"
	AssertAppliedCount   = "applied_count"
	AssertAppliedOrder   = "applied_order"
	AssertCadence        = "cadence"
	AssertFinalNodes     = "final_nodes"
	AssertFinalEdgeCount = "final_edge_count"
	AssertFinalViewport  = "final_viewport"
	AssertCurrentIndex   = "current_index"
	AssertReplaying      = "replaying"
	AssertLintClean      = "lint_clean"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario schema-checks and parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := CheckSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Strict decoding catches anything the schema let through.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	scenario.applyDefaults()
	return &scenario, nil
}

// SchemaError lists every schema violation in a scenario file.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Problems, "; ")
}

// CheckSchema validates scenario YAML against the embedded CUE schema.
func CheckSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return &SchemaError{Problems: []string{"empty document"}}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var problems []string
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, strings.TrimSpace(cueerrors.Details(e, nil)))
		}
		return &SchemaError{Problems: problems}
	}
	return nil
}

// validateScenario checks per-action argument requirements.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Action, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	var required []string
	switch step.Action {
	case ActionAddNodeAt:
		required = []string{"x", "y"}
	case ActionDragNode:
		required = []string{"id", "x", "y"}
	case ActionRemoveNode, ActionRemoveEdge:
		required = []string{"id"}
	case ActionConnect:
		required = []string{"source", "target"}
	case ActionViewport:
		required = []string{"x", "y", "zoom"}
	case ActionRecord:
		required = []string{"event_type"}
	case ActionAdvance, ActionSetSpeed:
		required = []string{"ms"}
	}
	for _, key := range required {
		if _, ok := step.Args[key]; !ok {
			return fmt.Errorf("args.%s is required", key)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertLogCount, AssertAppliedCount, AssertFinalEdgeCount:
		if a.Count == nil {
			return fmt.Errorf("count is required")
		}
	case AssertAppliedOrder:
		if a.Types == nil {
			return fmt.Errorf("types is required")
		}
	case AssertCadence:
		if a.IntervalMS <= 0 {
			return fmt.Errorf("interval_ms is required")
		}
	case AssertFinalNodes:
		if a.Nodes == nil {
			return fmt.Errorf("nodes is required")
		}
	case AssertFinalViewport:
		if a.Viewport == nil {
			return fmt.Errorf("viewport is required")
		}
	case AssertCurrentIndex:
		if a.Index == nil {
			return fmt.Errorf("index is required")
		}
	case AssertReplaying:
		if a.Value == nil {
			return fmt.Errorf("value is required")
		}
	}
	return nil
}

func (s *Scenario) applyDefaults() {
	if s.SessionID == "" {
		s.SessionID = DefaultSessionID
	}
	if s.SpeedMS == 0 {
		s.SpeedMS = DefaultSpeedMS
	}
	if s.StepMS == nil {
		d := DefaultStepMS
		s.StepMS = &d
	}
}
