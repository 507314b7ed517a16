package engine

import "time"

// Scheduler runs delayed callbacks for the replay cadence.
//
// AfterFunc arranges for f to run once d has elapsed and returns a cancel
// function. Cancel reports whether it prevented f from running; a false
// result means f already ran or is about to.
//
// Implementations must invoke f on the goroutine that drives the Engine
// (see loop.Loop). The engine guards against callbacks that slip past a
// cancel, but not against concurrent callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func() bool)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) func() bool

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) func() bool {
	return fn(d, f)
}
