package store

import (
	"testing"

	"github.com/roach88/canvasreplay/internal/event"
)

// createTestStore creates a new in-memory index for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleLog is a small mixed log: two sessions, repeated timestamps.
func sampleLog() []event.Event {
	return []event.Event{
		{Timestamp: 1000, Type: event.TypeNodeAdd, Data: event.Node{ID: "n1", Position: event.Position{X: 1, Y: 2}}, SessionID: "s1"},
		{Timestamp: 1000, Type: event.TypeNodeAdd, Data: event.Node{ID: "n2"}, SessionID: "s1", UserID: "u1"},
		{Timestamp: 2000, Type: event.TypeNodeUpdate, Data: event.NodeUpdate{NodeID: "n1", Position: event.Position{X: 5, Y: 5}}, SessionID: "s1"},
		{Timestamp: 3000, Type: event.TypeEdgeAdd, Data: event.Edge{ID: "e1", Source: "n1", Target: "n2"}, SessionID: "s2"},
		{Timestamp: 4000, Type: event.TypeViewportChange, Data: event.Viewport{X: 0, Y: 0, Zoom: 2}, SessionID: "s2"},
		{Timestamp: 5000, Type: event.TypeNodeUpdate, Data: "malformed", SessionID: "s2"},
	}
}
