package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintClean(t *testing.T) {
	out, err := execute(NewLintCommand(&RootOptions{Format: "text"}), fixture("editor_session"))
	require.NoError(t, err)
	assert.Contains(t, out, "editor_session: 5 event(s), 0 error(s), 0 warning(s)")
}

func TestLintErrorsFail(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", brokenPayloadScenario)

	out, err := execute(NewLintCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "#0 node_update [error]")
	assert.Contains(t, out, "#1 node_delete [warning]")
	assert.Contains(t, out, "broken_payload: 2 event(s), 1 error(s), 1 warning(s)")
}

func TestLintWarningsPassUnlessStrict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "warn.yaml", warningOnlyScenario)

	out, err := execute(NewLintCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "[warning]")

	_, err = execute(NewLintCommand(&RootOptions{Format: "text"}), "--strict", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLintJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", brokenPayloadScenario)

	out, err := execute(NewLintCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   LintResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeLint, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Errors)
	assert.Equal(t, 1, resp.Data.Warnings)
	require.Len(t, resp.Data.Findings, 2)
	assert.Equal(t, 0, resp.Data.Findings[0].Index)
}

func TestLintMissingScenario(t *testing.T) {
	_, err := execute(NewLintCommand(&RootOptions{Format: "text"}), "/nonexistent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
