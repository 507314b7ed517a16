package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// The harness package owns the shared scenario fixtures.
var (
	fixtureScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	fixtureGolden    = filepath.Join("..", "harness", "testdata", "golden")
)

func fixture(name string) string {
	return filepath.Join(fixtureScenarios, name+".yaml")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const brokenPayloadScenario = `
name: broken_payload
steps:
  - action: record
    args:
      event_type: node_update
      data: { nodeId: n1 }
  - action: record
    args:
      event_type: node_delete
      data: { nodeId: ghost }
`

const warningOnlyScenario = `
name: warning_only
steps:
  - action: record
    args:
      event_type: edge_delete
      data: { edgeId: ghost }
`
