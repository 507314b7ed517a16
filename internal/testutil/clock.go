package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time of a FakeScheduler: 2024-01-01T00:00:00Z.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeScheduler is a manually advanced clock with timer callbacks.
//
// Unlike the loop scheduler, callbacks run synchronously inside Advance on
// the caller's goroutine. This makes replay cadence observable without
// sleeping: advancing by exactly the replay speed fires exactly one tick.
//
// Thread-safety: all methods are safe for concurrent use, but callbacks
// are invoked without the internal lock held so they may schedule more work.
type FakeScheduler struct {
	mu     sync.Mutex
	start  time.Time
	now    time.Time
	seq    int64
	timers []*fakeTimer
}

type fakeTimer struct {
	at  time.Time
	seq int64
	f   func()
}

// NewFakeScheduler creates a scheduler whose clock starts at Epoch.
func NewFakeScheduler() *FakeScheduler {
	return NewFakeSchedulerAt(Epoch)
}

// NewFakeSchedulerAt creates a scheduler whose clock starts at start.
func NewFakeSchedulerAt(start time.Time) *FakeScheduler {
	return &FakeScheduler{start: start, now: start}
}

// Now returns the fake current time.
func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Elapsed returns how far the clock has advanced since construction.
func (s *FakeScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now.Sub(s.start)
}

// AfterFunc schedules f to run once the clock has advanced by d.
// The returned cancel function reports whether it prevented the call.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &fakeTimer{at: s.now.Add(d), seq: s.seq, f: f}
	s.timers = append(s.timers, t)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.removeLocked(t)
	}
}

// Pending returns the number of scheduled, unfired timers.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers scheduled by callbacks during the advance. Timers fire
// in due-time order, ties broken by scheduling order. Returns the number
// of callbacks run.
func (s *FakeScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		t := s.nextLocked()
		if t == nil || t.at.After(target) {
			s.now = target
			s.mu.Unlock()
			return fired
		}
		s.removeLocked(t)
		s.now = t.at
		s.mu.Unlock()

		t.f()
		fired++
	}
}

// RunUntilIdle advances the clock timer by timer until nothing is pending
// or maxFires callbacks have run. Returns the number of callbacks run.
func (s *FakeScheduler) RunUntilIdle(maxFires int) int {
	fired := 0
	for fired < maxFires {
		s.mu.Lock()
		t := s.nextLocked()
		if t == nil {
			s.mu.Unlock()
			return fired
		}
		wait := t.at.Sub(s.now)
		s.mu.Unlock()

		fired += s.Advance(wait)
	}
	return fired
}

func (s *FakeScheduler) nextLocked() *fakeTimer {
	var next *fakeTimer
	for _, t := range s.timers {
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *FakeScheduler) removeLocked(target *fakeTimer) bool {
	for i, t := range s.timers {
		if t == target {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}
