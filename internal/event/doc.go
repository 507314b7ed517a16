// Package event defines the recorded-mutation log for canvasreplay.
//
// This package contains the log data model only. Every other internal
// package imports event; event imports nothing internal. This keeps the
// log model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - An Event is never mutated after it is appended to a Log
//   - Payloads are not validated on the way in; malformed data is kept as-is
//     and left for the Applier to ignore
//   - Log order is insertion order, never timestamp order
//   - JSON tags use the camelCase names of the editor's wire shape
package event
