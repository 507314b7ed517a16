package event

// Log is the ordered, append-only event container for one session.
//
// Order is insertion order. Entries are never modified once appended; the
// only removal is Clear. A Log is not safe for concurrent use: it belongs
// to the goroutine driving the replay engine.
type Log struct {
	events []Event
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{events: make([]Event, 0, 64)}
}

// Append adds e to the end of the log and returns its index.
func (l *Log) Append(e Event) int {
	l.events = append(l.events, e)
	return len(l.events) - 1
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.events)
}

// At returns the entry at index i.
func (l *Log) At(i int) (Event, bool) {
	if i < 0 || i >= len(l.events) {
		return Event{}, false
	}
	return l.events[i], true
}

// Events returns a copy of all entries in log order.
// Returns an empty slice (not nil) for an empty log.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Clear removes every entry.
func (l *Log) Clear() {
	// Zero the slots so payloads can be collected. A replay in progress
	// plays from its own copy.
	clear(l.events)
	l.events = l.events[:0]
}
