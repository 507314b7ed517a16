// Package canvas holds the diagram state owned by the editor: nodes, edges
// and the viewport.
//
// The rendering collaborator reports user gestures as NodeChange and
// EdgeChange batches, which ApplyNodeChanges and ApplyEdgeChanges fold into
// the state. Replay goes through Apply instead, which interprets one logged
// event per call.
//
// Neither path emits change notifications. The session forwards gestures to
// the recorder itself, so replay mutations made through the setters can
// never be re-recorded.
package canvas
