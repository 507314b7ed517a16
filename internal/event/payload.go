package event

import (
	"bytes"
	"encoding/json"
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a full node record as produced by the editor.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// Label returns the node's display label, if any.
func (n Node) Label() string {
	if n.Data == nil {
		return ""
	}
	label, _ := n.Data["label"].(string)
	return label
}

// Edge is a full edge record. Handles are nullable in the editor's shape.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle"`
	TargetHandle *string `json:"targetHandle"`
}

// Viewport is the canvas pan/zoom state.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the viewport of a blank canvas.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// NodeUpdate is the node_update payload.
type NodeUpdate struct {
	NodeID   string   `json:"nodeId"`
	Position Position `json:"position"`
}

// NodeDelete is the node_delete payload.
type NodeDelete struct {
	NodeID string `json:"nodeId"`
}

// EdgeDelete is the edge_delete payload.
type EdgeDelete struct {
	EdgeID string `json:"edgeId"`
}

// Snapshot is the snapshot payload: a whole canvas.
type Snapshot struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// EmptySnapshot is a blank canvas with the default viewport.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Nodes:    []Node{},
		Edges:    []Edge{},
		Viewport: DefaultViewport(),
	}
}

// PayloadAs converts e.Data into T.
//
// The payload may already be a T or *T (recorded in-process), or a generic
// value such as map[string]any (decoded from JSON or YAML). Generic values
// are converted through JSON. Returns false when the payload is nil or
// cannot be represented as T.
func PayloadAs[T any](e Event) (T, bool) {
	var zero T
	switch v := e.Data.(type) {
	case nil:
		return zero, false
	case T:
		return v, true
	case *T:
		if v == nil {
			return zero, false
		}
		return *v, true
	}

	raw, err := json.Marshal(e.Data)
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

// decodePayload decodes raw into the typed payload for t. When that fails,
// or t is unknown, the generic JSON value is returned so nothing is lost.
func decodePayload(t Type, raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var typed any
	switch t {
	case TypeNodeAdd:
		typed = &Node{}
	case TypeNodeUpdate:
		typed = &NodeUpdate{}
	case TypeNodeDelete:
		typed = &NodeDelete{}
	case TypeEdgeAdd:
		typed = &Edge{}
	case TypeEdgeDelete:
		typed = &EdgeDelete{}
	case TypeViewportChange:
		typed = &Viewport{}
	case TypeSnapshot:
		typed = &Snapshot{}
	}

	if typed != nil && bytes.HasPrefix(trimmed, []byte("{")) {
		if err := json.Unmarshal(trimmed, typed); err == nil {
			return deref(typed), nil
		}
	}

	var generic any
	if err := json.Unmarshal(trimmed, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func deref(v any) any {
	switch p := v.(type) {
	case *Node:
		return *p
	case *NodeUpdate:
		return *p
	case *NodeDelete:
		return *p
	case *Edge:
		return *p
	case *EdgeDelete:
		return *p
	case *Viewport:
		return *p
	case *Snapshot:
		return *p
	}
	return v
}

// UnmarshalJSON decodes an Event, typing its payload by eventType.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire struct {
		Timestamp int64           `json:"timestamp"`
		Type      Type            `json:"eventType"`
		Data      json.RawMessage `json:"data"`
		SessionID string          `json:"sessionId"`
		UserID    string          `json:"userId"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	payload, err := decodePayload(wire.Type, wire.Data)
	if err != nil {
		return err
	}

	*e = Event{
		Timestamp: wire.Timestamp,
		Type:      wire.Type,
		Data:      payload,
		SessionID: wire.SessionID,
		UserID:    wire.UserID,
	}
	return nil
}
