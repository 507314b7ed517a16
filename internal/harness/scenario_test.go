package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvasreplay/internal/event"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
session_id: sess-1
user_id: alice
speed_ms: 250
steps:
  - action: add_node_at
    args:
      x: 10
      y: 20.5
  - action: viewport
    args: { x: 1, y: 2, zoom: 1.5 }
replay:
  stop_after: 1
assertions:
  - type: log_count
    count: 2
  - type: final_viewport
    viewport: { x: 1, y: 2, zoom: 1.5 }
  - type: final_nodes
    nodes:
      - { id: node_0, x: 10 }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "sess-1", scenario.SessionID)
	assert.Equal(t, "alice", scenario.UserID)
	assert.Equal(t, 250, scenario.SpeedMS)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, ActionAddNodeAt, scenario.Steps[0].Action)
	assert.Equal(t, 10, scenario.Steps[0].Args["x"])
	assert.Equal(t, 20.5, scenario.Steps[0].Args["y"])
	require.NotNil(t, scenario.Replay)
	require.NotNil(t, scenario.Replay.StopAfter)
	assert.Equal(t, 1, *scenario.Replay.StopAfter)

	require.Len(t, scenario.Assertions, 3)
	assert.Equal(t, 2, *scenario.Assertions[0].Count)
	assert.Equal(t, event.Viewport{X: 1, Y: 2, Zoom: 1.5}, *scenario.Assertions[1].Viewport)
	node := scenario.Assertions[2].Nodes[0]
	assert.Equal(t, "node_0", node.ID)
	require.NotNil(t, node.X)
	assert.Equal(t, 10.0, *node.X)
	assert.Nil(t, node.Y)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Defaults(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: defaults
steps:
  - action: add_node
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultSessionID, scenario.SessionID)
	assert.Equal(t, DefaultSpeedMS, scenario.SpeedMS)
	require.NotNil(t, scenario.StepMS)
	assert.Equal(t, DefaultStepMS, *scenario.StepMS)
	assert.Nil(t, scenario.Replay)
}

func TestParseScenario_ZeroStepKept(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: still_clock
step_ms: 0
steps: []
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.StepMS)
	assert.Equal(t, 0, *scenario.StepMS)
}

func TestParseScenario_EmptyReplayClause(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: full_replay
steps: []
replay: {}
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.Replay)
	assert.Nil(t, scenario.Replay.StopAfter)
}

func TestParseScenario_SchemaRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mention string
	}{
		{
			name: "unknown top-level field",
			content: `
name: typo
steps: []
bogus: true
`,
			mention: "bogus",
		},
		{
			name: "unknown action",
			content: `
name: bad_action
steps:
  - action: fly
`,
			mention: "action",
		},
		{
			name: "unknown assertion type",
			content: `
name: bad_assert
steps: []
assertions:
  - type: trace_contains
`,
			mention: "type",
		},
		{
			name: "unknown step field",
			content: `
name: bad_step
steps:
  - action: add_node
    invoke: Cart.addItem
`,
			mention: "invoke",
		},
		{
			name: "bad name",
			content: `
name: "Has Spaces"
steps: []
`,
			mention: "name",
		},
		{
			name: "zero speed",
			content: `
name: zero_speed
speed_ms: 0
steps: []
`,
			mention: "speed_ms",
		},
		{
			name: "non-positive zoom",
			content: `
name: flat
steps: []
assertions:
  - type: final_viewport
    viewport: { x: 0, y: 0, zoom: 0 }
`,
			mention: "zoom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Problems)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestParseScenario_EmptyDocument(t *testing.T) {
	_, err := ParseScenario([]byte(""))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"empty document"}, schemaErr.Problems)
}

func TestParseScenario_InvalidYAML(t *testing.T) {
	_, err := ParseScenario([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_MissingStepArgs(t *testing.T) {
	tests := []struct {
		name    string
		step    string
		wantErr string
	}{
		{"add_node_at", "{ action: add_node_at, args: { x: 1 } }", "steps[0] (add_node_at): args.y is required"},
		{"drag_node", "{ action: drag_node, args: { x: 1, y: 1 } }", "args.id is required"},
		{"connect", "{ action: connect, args: { source: a } }", "args.target is required"},
		{"viewport", "{ action: viewport, args: { x: 1, y: 1 } }", "args.zoom is required"},
		{"record", "{ action: record, args: { data: {} } }", "args.event_type is required"},
		{"advance", "{ action: advance }", "args.ms is required"},
		{"set_speed", "{ action: set_speed }", "args.ms is required"},
		{"remove_edge", "{ action: remove_edge }", "args.id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte("name: args\nsteps:\n  - " + tt.step + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_MissingAssertionFields(t *testing.T) {
	tests := []struct {
		assertion string
		wantErr   string
	}{
		{"{ type: log_count }", "assertions[0] (log_count): count is required"},
		{"{ type: applied_order }", "types is required"},
		{"{ type: cadence }", "interval_ms is required"},
		{"{ type: final_nodes }", "nodes is required"},
		{"{ type: final_viewport }", "viewport is required"},
		{"{ type: current_index }", "index is required"},
		{"{ type: replaying }", "value is required"},
	}

	for _, tt := range tests {
		t.Run(tt.assertion, func(t *testing.T) {
			_, err := ParseScenario([]byte("name: asserts\nsteps: []\nassertions:\n  - " + tt.assertion + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_LintCleanNeedsNoFields(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: lint_only
steps: []
assertions:
  - type: lint_clean
`))
	require.NoError(t, err)
	assert.Equal(t, AssertLintClean, scenario.Assertions[0].Type)
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
