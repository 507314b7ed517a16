package session

import "fmt"

// Status is the editor's status panel.
type Status struct {
	Events    int
	Replaying bool
	// Current is 1-based and only set while replaying.
	Current int
	Total   int
}

// String renders the panel: the event count, plus the progress line
// while replaying.
func (st Status) String() string {
	s := fmt.Sprintf("Events: %d", st.Events)
	if st.Replaying {
		s += fmt.Sprintf("\nReplaying: %d/%d", st.Current, st.Total)
	}
	return s
}

// Status returns the current status panel.
func (s *Session) Status() Status {
	st := s.engine.State()
	out := Status{
		Events:    len(st.Events),
		Replaying: st.IsReplaying,
	}
	if st.IsReplaying {
		out.Current, out.Total = st.Progress()
	}
	return out
}
