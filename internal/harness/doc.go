// Package harness runs scripted editing sessions and checks what replay
// does with them.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: node_move
//	description: "Add a node, drag it, replay"
//	session_id: sess-1
//	speed_ms: 1000
//	step_ms: 100
//	steps:
//	  - action: add_node_at
//	    args: { x: 100, y: 100 }
//	  - action: drag_node
//	    args: { id: node_0, x: 5, y: 5 }
//	replay:
//	  stop_after: 1
//	assertions:
//	  - type: log_count
//	    count: 2
//	  - type: applied_order
//	    types: [snapshot, node_add]
//
// Files are checked against an embedded CUE schema before decoding, so
// typos in field names, actions and assertion types fail at load time.
//
// # Step Actions
//
//   - add_node, add_node_at: create the next node_<n> (at x, y)
//   - drag_node: drag id to x, y; intermediate positions are not recorded
//   - remove_node, remove_edge: delete by id through the change callbacks
//   - connect: join source to target (optional source_handle, target_handle)
//   - viewport: pan/zoom to x, y, zoom
//   - record: append event_type with data directly, bypassing the canvas
//   - advance: move the clock forward by ms, firing due replay ticks
//   - toggle_replay, stop_replay, set_speed (ms), clear
//
// A step whose action is expected to be refused (for example add_node
// while replaying) sets expect_error: true.
//
// # Assertion Types
//
//   - log_count: number of logged events
//   - applied_count, applied_order: deliveries seen by the applier
//   - cadence: every pair of successive deliveries is interval_ms apart
//   - final_nodes: node ids in order, with positions where given
//   - final_edge_count, final_viewport: the canvas after the run
//   - current_index, replaying: the engine state after the run
//   - lint_clean: no lint findings for the log
//
// # Deterministic Execution
//
// Scenarios run on a testutil.FakeScheduler starting at testutil.Epoch:
// timestamps, edge IDs and replay cadence are identical on every run, and
// the whole replay completes without sleeping. Node positions default to a
// grid so add_node is deterministic too.
package harness
