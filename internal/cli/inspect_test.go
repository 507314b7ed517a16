package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/harness"
	"github.com/roach88/canvasreplay/internal/store"
)

type inspectResponse struct {
	Status string        `json:"status"`
	Data   InspectResult `json:"data"`
}

func TestInspectText(t *testing.T) {
	out, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), fixture("editor_session"))
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: editor_session")
	assert.Contains(t, out, "Events: 5")
	assert.Contains(t, out, "Digest: ")
	assert.Contains(t, out, "node_add")
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "1704067200500")
}

func TestInspectJSON(t *testing.T) {
	out, err := execute(NewInspectCommand(&RootOptions{Format: "json"}), fixture("editor_session"))
	require.NoError(t, err)

	var resp inspectResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Total)
	assert.Equal(t, map[string]int{
		"edge_add":        1,
		"node_add":        2,
		"node_update":     1,
		"viewport_change": 1,
	}, resp.Data.Counts)
	require.Len(t, resp.Data.Entries, 5)
	for i, e := range resp.Data.Entries {
		assert.Equal(t, i, e.Index)
		assert.Len(t, e.Hash, 64)
	}
}

func TestInspectFilters(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		index []int
	}{
		{"type", []string{"--type", "node_add"}, []int{0, 1}},
		{"since", []string{"--since", "1704067200300"}, []int{2, 3, 4}},
		{"until", []string{"--until", "1704067200200"}, []int{0, 1}},
		{"range", []string{"--since", "1704067200200", "--until", "1704067200400"}, []int{1, 2, 3}},
		{"limit", []string{"--limit", "2"}, []int{0, 1}},
		{"no match", []string{"--type", "node_delete"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, fixture("editor_session"))
			out, err := execute(NewInspectCommand(&RootOptions{Format: "json"}), args...)
			require.NoError(t, err)

			var resp inspectResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, 5, resp.Data.Total, "counts ignore filters")

			got := make([]int, len(resp.Data.Entries))
			for i, e := range resp.Data.Entries {
				got[i] = e.Index
			}
			assert.Equal(t, tt.index, got)
		})
	}
}

func TestInspectUnknownType(t *testing.T) {
	_, err := execute(NewInspectCommand(&RootOptions{Format: "text"}), "--type", "node_move", fixture("editor_session"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown event type "node_move"`)
}

func TestInspectLogDigestMatchesEvents(t *testing.T) {
	scenario, err := harness.LoadScenario(fixture("node_move"))
	require.NoError(t, err)
	log, err := harness.Record(scenario)
	require.NoError(t, err)

	result, err := inspectLog(context.Background(), log, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, event.MustDigest(log), result.Digest)
	require.Len(t, result.Entries, 2)

	for i, e := range result.Entries {
		want, err := event.Hash(log[i])
		require.NoError(t, err)
		assert.Equal(t, want, e.Hash)
	}
}
