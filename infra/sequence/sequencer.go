package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic arrival sequence numbers. They
// are the sole tie-breaker for time priority within a price level.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer starting after a given value.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next arrival sequence.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
