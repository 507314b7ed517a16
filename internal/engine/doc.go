// Package engine implements the canvasreplay replay engine.
//
// The engine owns the session's event log and a two-state machine:
//
//	Idle ──Start(applier)──▶ Replaying ──last entry applied──▶ Idle
//	                          │
//	                          └──Stop()──▶ Idle
//
// ARCHITECTURE:
//
// Single-Writer Discipline:
// The engine holds no locks. Every method, and every timer callback it
// schedules, must run on one goroutine. The loop package provides that
// goroutine and a Scheduler whose callbacks are posted back onto it.
// Tests use testutil.FakeScheduler, which runs callbacks inline.
//
// Replay Flow:
//  1. Start copies the log; later appends or Clear do not affect the run
//  2. The synthetic snapshot reset is delivered synchronously
//  3. Each log entry is delivered on its own tick, speed after the previous
//     delivery, in log order
//  4. After the final entry the engine is Idle with nothing scheduled
//
// At most one tick is pending at any time: the next tick is scheduled only
// after the current delivery returns.
//
// CRITICAL PATTERNS:
//
// Stale Tick Protection:
// A scheduler may have already fired a callback that has not yet run (for
// example, queued behind other work on the loop). Stop cancels the pending
// timer and also detaches the run, so such a callback finds itself stale
// and returns without delivering.
//
// Log and Continue:
// An applier that panics is recovered, logged with the event context and
// counted. Replay proceeds with the next entry; a single bad entry never
// halts the sequence.
package engine
