// Package store indexes a session log in SQLite for inspection.
//
// The index is an in-memory database rebuilt from the live log on demand.
// It is never written to disk and is not a source of truth: the log in the
// engine is. It exists so tooling can ask questions of a log (counts per
// type, entries in a time window, entries of one session) with SQL instead
// of ad-hoc loops.
//
// # Ordering
//
// Every query orders by idx, the entry's position in the log. Timestamps
// only filter, never order: they may repeat, and log order is the order
// replay uses.
//
// # Payloads
//
// Payloads are stored as canonical JSON next to the event's content hash,
// so two indexes of the same log are byte-identical.
package store
