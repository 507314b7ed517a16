package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes_Valid(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, typ.Valid(), "%s should be valid", typ)
	}
	assert.False(t, Type("node_rename").Valid())
	assert.Len(t, Types(), 8)
}

func TestReset(t *testing.T) {
	e := Reset()

	assert.Equal(t, TypeSnapshot, e.Type)
	assert.Equal(t, int64(0), e.Timestamp)

	snap, ok := PayloadAs[Snapshot](e)
	require.True(t, ok)
	assert.Empty(t, snap.Nodes)
	assert.Empty(t, snap.Edges)
	assert.Equal(t, Viewport{X: 0, Y: 0, Zoom: 1}, snap.Viewport)
}

func TestPayloadAs_TypedValue(t *testing.T) {
	e := Event{Type: TypeNodeUpdate, Data: NodeUpdate{NodeID: "n1", Position: Position{X: 5, Y: 5}}}

	got, ok := PayloadAs[NodeUpdate](e)
	require.True(t, ok)
	assert.Equal(t, "n1", got.NodeID)
	assert.Equal(t, Position{X: 5, Y: 5}, got.Position)
}

func TestPayloadAs_Pointer(t *testing.T) {
	e := Event{Type: TypeEdgeDelete, Data: &EdgeDelete{EdgeID: "e1"}}

	got, ok := PayloadAs[EdgeDelete](e)
	require.True(t, ok)
	assert.Equal(t, "e1", got.EdgeID)

	var nilPtr *EdgeDelete
	_, ok = PayloadAs[EdgeDelete](Event{Data: nilPtr})
	assert.False(t, ok)
}

func TestPayloadAs_GenericMap(t *testing.T) {
	e := Event{
		Type: TypeNodeUpdate,
		Data: map[string]any{
			"nodeId":   "n1",
			"position": map[string]any{"x": 5, "y": 7.5},
		},
	}

	got, ok := PayloadAs[NodeUpdate](e)
	require.True(t, ok)
	assert.Equal(t, "n1", got.NodeID)
	assert.Equal(t, Position{X: 5, Y: 7.5}, got.Position)
}

func TestPayloadAs_Incompatible(t *testing.T) {
	_, ok := PayloadAs[NodeUpdate](Event{Data: "not an object"})
	assert.False(t, ok)

	_, ok = PayloadAs[NodeUpdate](Event{Data: nil})
	assert.False(t, ok)
}

func TestEvent_JSONRoundTripTypesPayload(t *testing.T) {
	in := Event{
		Timestamp: 1700000000000,
		Type:      TypeEdgeAdd,
		Data:      Edge{ID: "e1", Source: "n1", Target: "n2"},
		SessionID: "s-1",
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"eventType":"edge_add"`)
	assert.Contains(t, string(raw), `"sourceHandle":null`)
	assert.NotContains(t, string(raw), "userId")

	var out Event
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestEvent_UnmarshalKeepsMalformedPayload(t *testing.T) {
	raw := `{"timestamp":1,"eventType":"node_update","data":[1,2,3]}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, TypeNodeUpdate, e.Type)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, e.Data)
}

func TestEvent_UnmarshalUnknownType(t *testing.T) {
	raw := `{"timestamp":1,"eventType":"group_add","data":{"id":"g1"}}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, Type("group_add"), e.Type)
	assert.Equal(t, map[string]any{"id": "g1"}, e.Data)
}

func TestEvent_UnmarshalNullPayload(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":1,"eventType":"node_delete","data":null}`), &e))
	assert.Nil(t, e.Data)
}

func TestNode_Label(t *testing.T) {
	assert.Equal(t, "Node 1", Node{Data: map[string]any{"label": "Node 1"}}.Label())
	assert.Equal(t, "", Node{}.Label())
}
