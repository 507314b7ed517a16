package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/canvasreplay/internal/event"
)

// AssertionError is returned when an assertion fails.
// It includes the delivery sequence to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Applied  []Delivery
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Applied) > 0 {
		fmt.Fprintf(&buf, "\nDeliveries:\n")
		for i, d := range e.Applied {
			fmt.Fprintf(&buf, "  [%d] +%dms %s\n", i, d.AtMS, d.Type)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertLogCount:
		return expectCount(r, a.Type, *a.Count, len(r.Log))
	case AssertAppliedCount:
		return expectCount(r, a.Type, *a.Count, len(r.Applied))
	case AssertFinalEdgeCount:
		return expectCount(r, a.Type, *a.Count, len(r.Final.Edges))
	case AssertAppliedOrder:
		return assertAppliedOrder(r, a.Types)
	case AssertCadence:
		return assertCadence(r, int64(a.IntervalMS))
	case AssertFinalNodes:
		return assertFinalNodes(r, a.Nodes)
	case AssertFinalViewport:
		if r.Final.Viewport != *a.Viewport {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%+v", *a.Viewport),
				Actual:   fmt.Sprintf("%+v", r.Final.Viewport),
			}
		}
	case AssertCurrentIndex:
		if r.CurrentIndex != *a.Index {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("index %d", *a.Index),
				Actual:   fmt.Sprintf("index %d", r.CurrentIndex),
				Applied:  r.Applied,
			}
		}
	case AssertReplaying:
		if r.Replaying != *a.Value {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("replaying=%t", *a.Value),
				Actual:   fmt.Sprintf("replaying=%t", r.Replaying),
			}
		}
	case AssertLintClean:
		if len(r.Findings) > 0 {
			lines := make([]string, len(r.Findings))
			for i, f := range r.Findings {
				lines[i] = f.String()
			}
			return &AssertionError{
				Type:     a.Type,
				Expected: "no findings",
				Actual:   strings.Join(lines, "; "),
			}
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func expectCount(r *Result, typ string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Applied:  r.Applied,
	}
}

func assertAppliedOrder(r *Result, want []string) error {
	got := make([]string, len(r.Applied))
	for i, d := range r.Applied {
		got[i] = string(d.Type)
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertAppliedOrder,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// assertCadence checks that successive deliveries are exactly interval
// apart. The reset and the first entry count as a pair.
func assertCadence(r *Result, interval int64) error {
	for i := 1; i < len(r.Applied); i++ {
		gap := r.Applied[i].AtMS - r.Applied[i-1].AtMS
		if gap != interval {
			return &AssertionError{
				Type:     AssertCadence,
				Expected: fmt.Sprintf("%dms between deliveries", interval),
				Actual:   fmt.Sprintf("%dms between deliveries %d and %d", gap, i-1, i),
				Applied:  r.Applied,
			}
		}
	}
	return nil
}

func assertFinalNodes(r *Result, want []NodeExpect) error {
	got := r.Final.Nodes
	ids := func(nodes []event.Node) []string {
		out := make([]string, len(nodes))
		for i, n := range nodes {
			out[i] = n.ID
		}
		return out
	}

	wantIDs := make([]string, len(want))
	for i, w := range want {
		wantIDs[i] = w.ID
	}
	if !slices.Equal(ids(got), wantIDs) {
		return &AssertionError{
			Type:     AssertFinalNodes,
			Expected: fmt.Sprintf("nodes %v", wantIDs),
			Actual:   fmt.Sprintf("nodes %v", ids(got)),
		}
	}

	for i, w := range want {
		pos := got[i].Position
		if (w.X != nil && *w.X != pos.X) || (w.Y != nil && *w.Y != pos.Y) {
			return &AssertionError{
				Type:     AssertFinalNodes,
				Expected: fmt.Sprintf("%s at (%s, %s)", w.ID, coord(w.X), coord(w.Y)),
				Actual:   fmt.Sprintf("%s at (%g, %g)", w.ID, pos.X, pos.Y),
			}
		}
	}
	return nil
}

func coord(v *float64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%g", *v)
}
