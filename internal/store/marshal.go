package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/canvasreplay/internal/event"
)

// marshalData converts a payload to canonical JSON TEXT for storage.
// A nil payload is stored as "null".
func marshalData(data any) (string, error) {
	b, err := event.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	return string(b), nil
}

// unmarshalEvent rebuilds an event from its columns. The payload is decoded
// into its tag's typed shape when it fits, like any logged JSON event.
func unmarshalEvent(ts int64, typ, sessionID, userID, data string) (event.Event, error) {
	raw, err := json.Marshal(struct {
		Timestamp int64           `json:"timestamp"`
		Type      string          `json:"eventType"`
		Data      json.RawMessage `json:"data"`
		SessionID string          `json:"sessionId,omitempty"`
		UserID    string          `json:"userId,omitempty"`
	}{ts, typ, json.RawMessage(data), sessionID, userID})
	if err != nil {
		return event.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}

	var e event.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return event.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
