// Package lint reports log entries a canvas applier would ignore.
//
// Recording never validates payloads, so a log can hold entries that
// replay silently skips. Check finds them after the fact: payloads that
// do not match their tag's JSON Schema, tags outside the known set, the
// reserved edge_update tag, and updates or deletes aimed at nodes and
// edges that do not exist at that point of the log.
package lint

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/canvasreplay/internal/event"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBase is the URL under which the embedded schemas are registered,
// so relative $refs between them resolve without a loader.
const schemaBase = "https://canvasreplay.local/schemas/"

// Severity ranks a finding.
type Severity string

const (
	// SeverityError marks a payload the applier cannot interpret.
	SeverityError Severity = "error"
	// SeverityWarning marks an entry that is well formed but has no effect.
	SeverityWarning Severity = "warning"
)

// Finding is one problem with one log entry.
type Finding struct {
	Index    int        `json:"index"`
	Type     event.Type `json:"eventType"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("#%d %s [%s] %s", f.Index, f.Type, f.Severity, f.Message)
}

// Linter validates payloads against the embedded per-type schemas.
type Linter struct {
	schemas map[event.Type]*jsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Linter, error) {
	compiler := jsonschema.NewCompiler()

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBase+entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", entry.Name(), err)
		}
	}

	l := &Linter{schemas: make(map[event.Type]*jsonschema.Schema)}
	for _, t := range event.Types() {
		if t == event.TypeEdgeUpdate {
			continue
		}
		schema, err := compiler.Compile(schemaBase + string(t) + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", t, err)
		}
		l.schemas[t] = schema
	}
	return l, nil
}

// Check lints events in log order. An empty result means every entry
// would take effect on replay.
func (l *Linter) Check(events []event.Event) []Finding {
	findings := []Finding{}
	targets := newTargets()

	for i, e := range events {
		add := func(sev Severity, format string, args ...any) {
			findings = append(findings, Finding{
				Index:    i,
				Type:     e.Type,
				Severity: sev,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if e.Type == event.TypeEdgeUpdate {
			add(SeverityWarning, "edge_update is reserved and ignored on replay")
			continue
		}
		schema, ok := l.schemas[e.Type]
		if !ok {
			add(SeverityError, "unknown event type %q", string(e.Type))
			continue
		}

		if msgs := validate(schema, e.Data); len(msgs) > 0 {
			for _, msg := range msgs {
				add(SeverityError, "%s", msg)
			}
			continue
		}

		if msg := targets.apply(e); msg != "" {
			add(SeverityWarning, "%s", msg)
		}
	}
	return findings
}

// validate returns one message per leaf schema violation, sorted.
func validate(schema *jsonschema.Schema, data any) []string {
	raw, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("payload is not JSON: %v", err)}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return []string{fmt.Sprintf("payload is not JSON: %v", err)}
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	var msgs []string
	collectLeaves(ve, &msgs)
	sort.Strings(msgs)
	return msgs
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+strings.TrimSpace(ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}
