package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvasreplay/internal/event"
)

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return scenario
}

func requirePass(t *testing.T, result *Result) {
	t.Helper()
	require.True(t, result.Pass, "scenario failed:\n%s", strings.Join(result.Errors, "\n"))
}

func TestRun_TestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			requirePass(t, result)
		})
	}
}

func TestRun_NoReplay(t *testing.T) {
	result, err := Run(mustParse(t, `
name: record_only
steps:
  - action: add_node
  - action: add_node
`))
	require.NoError(t, err)
	requirePass(t, result)

	assert.Len(t, result.Log, 2)
	assert.Empty(t, result.Applied)
	assert.False(t, result.Replaying)
	assert.Len(t, result.Final.Nodes, 2)
}

func TestRun_TimestampsFollowStepClock(t *testing.T) {
	result, err := Run(mustParse(t, `
name: stamps
step_ms: 250
steps:
  - action: add_node
  - action: add_node
  - action: add_node
`))
	require.NoError(t, err)
	require.Len(t, result.Log, 3)

	base := result.Log[0].Timestamp
	assert.Equal(t, base+250, result.Log[1].Timestamp)
	assert.Equal(t, base+500, result.Log[2].Timestamp)
	for _, e := range result.Log {
		assert.Equal(t, DefaultSessionID, e.SessionID)
	}
}

func TestRun_UserIDStamped(t *testing.T) {
	result, err := Run(mustParse(t, `
name: stamped
user_id: alice
steps:
  - action: add_node
`))
	require.NoError(t, err)
	require.Len(t, result.Log, 1)
	assert.Equal(t, "alice", result.Log[0].UserID)
}

func TestRun_GridPlacement(t *testing.T) {
	result, err := Run(mustParse(t, `
name: grid
steps:
  - action: add_node
  - action: add_node
`))
	require.NoError(t, err)
	require.Len(t, result.Final.Nodes, 2)
	assert.NotEqual(t, result.Final.Nodes[0].Position, result.Final.Nodes[1].Position)
}

func TestRun_FullReplayRebuildsCanvas(t *testing.T) {
	result, err := Run(mustParse(t, `
name: rebuild
steps:
  - action: add_node_at
    args: { x: 10, y: 10 }
  - action: add_node_at
    args: { x: 20, y: 20 }
  - action: connect
    args: { source: node_0, target: node_1 }
  - action: remove_node
    args: { id: node_1 }
replay: {}
assertions:
  - type: log_count
    count: 4
  - type: applied_order
    types: [snapshot, node_add, node_add, edge_add, node_delete]
  - type: final_nodes
    nodes:
      - { id: node_0, x: 10, y: 10 }
  - type: current_index
    index: 3
  - type: replaying
    value: false
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_SpeedMS(t *testing.T) {
	result, err := Run(mustParse(t, `
name: quick
speed_ms: 250
steps:
  - action: add_node
  - action: add_node
replay: {}
assertions:
  - type: cadence
    interval_ms: 250
`))
	require.NoError(t, err)
	requirePass(t, result)

	require.Len(t, result.Applied, 3)
	start := result.Applied[0].AtMS
	assert.Equal(t, start+250, result.Applied[1].AtMS)
	assert.Equal(t, start+500, result.Applied[2].AtMS)
}

func TestRun_StopAfterZero(t *testing.T) {
	result, err := Run(mustParse(t, `
name: stop_at_reset
steps:
  - action: add_node
replay:
  stop_after: 0
assertions:
  - type: applied_order
    types: [snapshot]
  - type: replaying
    value: false
  - type: final_nodes
    nodes: []
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_ReplayOfEmptyLog(t *testing.T) {
	result, err := Run(mustParse(t, `
name: empty_replay
steps: []
replay: {}
assertions:
  - type: applied_count
    count: 0
  - type: replaying
    value: false
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_SetSpeedStep(t *testing.T) {
	result, err := Run(mustParse(t, `
name: set_speed
steps:
  - action: add_node
  - action: set_speed
    args: { ms: 40 }
  - action: toggle_replay
  - action: advance
    args: { ms: 40 }
assertions:
  - type: applied_order
    types: [snapshot, node_add]
  - type: cadence
    interval_ms: 40
  - type: replaying
    value: false
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_InvalidSpeedStepFails(t *testing.T) {
	result, err := Run(mustParse(t, `
name: bad_speed
steps:
  - action: set_speed
    args: { ms: 0 }
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] set_speed")
}

func TestRun_ExpectErrorNotRaised(t *testing.T) {
	result, err := Run(mustParse(t, `
name: no_error
steps:
  - action: add_node
    expect_error: true
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected an error, got none")
}

func TestRun_DragMissingNode(t *testing.T) {
	result, err := Run(mustParse(t, `
name: drag_ghost
steps:
  - action: drag_node
    args: { id: ghost, x: 1, y: 1 }
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `node "ghost" not found`)
	assert.Empty(t, result.Log)
}

func TestRun_DragRecordsOnlySettledPosition(t *testing.T) {
	result, err := Run(mustParse(t, `
name: drag
steps:
  - action: add_node_at
    args: { x: 0, y: 0 }
  - action: drag_node
    args: { id: node_0, x: 30, y: 40 }
`))
	require.NoError(t, err)
	requirePass(t, result)

	require.Len(t, result.Log, 2)
	assert.Equal(t, event.TypeNodeUpdate, result.Log[1].Type)
	upd, ok := event.PayloadAs[event.NodeUpdate](result.Log[1])
	require.True(t, ok)
	assert.Equal(t, event.Position{X: 30, Y: 40}, upd.Position)
}

func TestRun_DuplicateConnectionRefused(t *testing.T) {
	result, err := Run(mustParse(t, `
name: dup_connect
steps:
  - action: add_node
  - action: add_node
  - action: connect
    args: { source: node_0, target: node_1 }
  - action: connect
    args: { source: node_0, target: node_1 }
    expect_error: true
assertions:
  - type: log_count
    count: 3
  - type: final_edge_count
    count: 1
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_RemoveEdge(t *testing.T) {
	scenario := mustParse(t, `
name: remove_edge
steps:
  - action: add_node
  - action: add_node
  - action: connect
    args: { source: node_0, target: node_1 }
`)
	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Final.Edges, 1)
	edgeID := result.Final.Edges[0].ID

	scenario.Steps = append(scenario.Steps, Step{
		Action: ActionRemoveEdge,
		Args:   map[string]any{"id": edgeID},
	})
	result, err = Run(scenario)
	require.NoError(t, err)
	requirePass(t, result)

	assert.Empty(t, result.Final.Edges)
	require.Len(t, result.Log, 4)
	assert.Equal(t, event.TypeEdgeDelete, result.Log[3].Type)
}

func TestRun_ClearEmptiesLogAndCanvas(t *testing.T) {
	result, err := Run(mustParse(t, `
name: clear
steps:
  - action: add_node
  - action: add_node
  - action: clear
assertions:
  - type: log_count
    count: 0
  - type: final_nodes
    nodes: []
`))
	require.NoError(t, err)
	requirePass(t, result)
}

func TestRun_RecordRawEventsAreLinted(t *testing.T) {
	result, err := Run(mustParse(t, `
name: raw
steps:
  - action: record
    args:
      event_type: node_update
      data: { nodeId: missing, position: { x: 1, y: 1 } }
assertions:
  - type: lint_clean
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Findings)
	assert.Equal(t, 0, result.Findings[0].Index)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "lint_clean")
}

func TestRun_FailedAssertionsReported(t *testing.T) {
	result, err := Run(mustParse(t, `
name: wrong
steps:
  - action: add_node
replay: {}
assertions:
  - type: log_count
    count: 5
  - type: replaying
    value: true
  - type: current_index
    index: 0
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "log_count")
	assert.Contains(t, result.Errors[1], "assertions[1]")
}

func TestRecord_IgnoresReplayAndAssertions(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "editor_session.yaml"))
	require.NoError(t, err)
	scenario.Assertions = append(scenario.Assertions, Assertion{Type: AssertLogCount, Count: new(int)})

	log, err := Record(scenario)
	require.NoError(t, err)
	require.Len(t, log, 5)
	assert.Equal(t, event.TypeViewportChange, log[4].Type)
	assert.NotNil(t, scenario.Replay, "scenario is not modified")
}

func TestRecord_StepFailure(t *testing.T) {
	_, err := Record(mustParse(t, `
name: broken
steps:
  - action: stop_replay
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record broken: steps[0] stop_replay: no replay running")
}
