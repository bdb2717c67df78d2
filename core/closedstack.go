package core

import "pkt.systems/wheelhouse/schema"

// closedStack is the bounded recall stack for closed tabs. Push evicts the
// oldest entry on overflow; Pop is LIFO.
type closedStack struct {
	entries []schema.ClosedTab
	max     int
}

func newClosedStack(max int) *closedStack {
	if max <= 0 {
		max = schema.DefaultClosedStackMax
	}
	return &closedStack{max: max}
}

func (s *closedStack) Push(entry schema.ClosedTab) {
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}

func (s *closedStack) Pop() (schema.ClosedTab, bool) {
	if len(s.entries) == 0 {
		return schema.ClosedTab{}, false
	}
	entry := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return entry, true
}

func (s *closedStack) Len() int {
	return len(s.entries)
}
