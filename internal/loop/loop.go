// Package loop provides the single goroutine that drives a replay engine.
//
// The engine and the canvas it feeds are not safe for concurrent use.
// Every mutation (UI handlers, recorded edits, replay ticks) is posted to a
// Loop and runs on its goroutine, one task at a time, in posting order.
//
// Loop also implements engine.Scheduler: AfterFunc arms a real timer whose
// expiry posts the callback onto the loop instead of running it on the
// timer goroutine. A cancel that loses the race with an expiry returns
// false, and the engine discards the tick when it arrives.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrClosed is returned when work is posted to a stopped loop.
var ErrClosed = errors.New("loop closed")

// Loop serializes tasks onto one goroutine.
//
// Thread-safety: Post, Do, AfterFunc and Stop may be called from any
// goroutine. Run must be called exactly once.
type Loop struct {
	queue  *taskQueue
	logger *slog.Logger
	done   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// New creates a Loop. Tasks queue up until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:  newTaskQueue(),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes tasks until ctx is cancelled or Stop is called.
//
// On Stop, tasks already queued are drained before Run returns nil.
// On cancellation Run returns ctx.Err() without draining.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	l.logger.Debug("loop starting")

	for {
		if f, ok := l.queue.TryDequeue(); ok {
			l.runTask(f)
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel is closed with the queue, so this case
			// fires immediately once Stop has been called.
			if l.queue.Len() == 0 && l.closed() {
				l.logger.Debug("loop stopping: closed")
				return nil
			}
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stop closes the loop to new work. Run returns once the queue drains.
func (l *Loop) Stop() {
	l.queue.Close()
}

// Post queues f to run on the loop goroutine.
// Returns false if the loop is closed.
func (l *Loop) Post(f func()) bool {
	return l.queue.Enqueue(f)
}

// Do runs f on the loop goroutine and waits for it to return.
//
// Do must not be called from the loop goroutine itself; it would deadlock.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for loop task: %w", ctx.Err())
	case <-l.done:
		// Run exited on cancellation before reaching the task.
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// AfterFunc arms a timer that posts f onto the loop after d.
//
// The returned cancel reports whether it stopped the timer before expiry.
// Once the timer has fired, f is already queued and cancel returns false.
func (l *Loop) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, func() {
		if !l.Post(f) {
			l.logger.Debug("timer fired after loop closed")
		}
	})
	return t.Stop
}

// runTask runs one task, recovering panics so the loop keeps serving.
func (l *Loop) runTask(f func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked, continuing", "panic", r)
		}
	}()
	f()
}

func (l *Loop) closed() bool {
	l.queue.mu.Lock()
	defer l.queue.mu.Unlock()
	return l.queue.closed
}
