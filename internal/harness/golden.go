package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/canvasreplay/internal/event"
)

// TraceSnapshot is the golden view of a run: what was logged, what replay
// delivered and when, and the canvas it left behind.
type TraceSnapshot struct {
	ScenarioName string
	SessionID    string
	Result       *Result
}

// toCanonicalMap converts the snapshot to generic values for canonical JSON.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	applied := make([]any, len(s.Result.Applied))
	for i, d := range s.Result.Applied {
		applied[i] = map[string]any{
			"at_ms":     d.AtMS,
			"eventType": string(d.Type),
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"session_id":    s.SessionID,
		"log":           s.Result.Log,
		"applied":       applied,
		"final":         s.Result.Final,
		"state": map[string]any{
			"replaying":     s.Result.Replaying,
			"current_index": s.Result.CurrentIndex,
		},
	}
}

// Marshal renders the snapshot as canonical JSON.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return event.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.SessionID, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name, sessionID string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{ScenarioName: name, SessionID: sessionID, Result: result}
	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
