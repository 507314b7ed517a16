package event

// Type tags an Event with the kind of mutation it records.
type Type string

// Recorded mutation kinds.
const (
	TypeNodeAdd        Type = "node_add"
	TypeNodeUpdate     Type = "node_update"
	TypeNodeDelete     Type = "node_delete"
	TypeEdgeAdd        Type = "edge_add"
	TypeEdgeUpdate     Type = "edge_update" // reserved, never recorded
	TypeEdgeDelete     Type = "edge_delete"
	TypeViewportChange Type = "viewport_change"
	TypeSnapshot       Type = "snapshot"
)

var allTypes = []Type{
	TypeNodeAdd,
	TypeNodeUpdate,
	TypeNodeDelete,
	TypeEdgeAdd,
	TypeEdgeUpdate,
	TypeEdgeDelete,
	TypeViewportChange,
	TypeSnapshot,
}

// Types returns every known tag in declaration order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is one of the known tags.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// Event is one recorded mutation.
//
// Timestamp is wall-clock milliseconds since the Unix epoch at recording
// time. It is informational: replay cadence does not depend on it.
//
// Data holds a payload whose shape depends on Type (see payload.go). It is
// deliberately untyped so the recorder never rejects input.
type Event struct {
	Timestamp int64  `json:"timestamp"`
	Type      Type   `json:"eventType"`
	Data      any    `json:"data"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// Reset returns the synthetic snapshot event applied at the start of every
// replay: empty node set, empty edge set, default viewport.
func Reset() Event {
	return Event{
		Timestamp: 0,
		Type:      TypeSnapshot,
		Data:      EmptySnapshot(),
	}
}
