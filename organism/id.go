package organism

import "sync/atomic"

// ID is an opaque organism handle.
type ID uint64

// IDSource hands out organism identities.
type IDSource interface {
	Next() ID
}

// Sequence is an IDSource counting up from a starting value.
type Sequence struct {
	last atomic.Uint64
}

// NewSequence returns a Sequence whose first ID is start+1.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

func (s *Sequence) Next() ID {
	return ID(s.last.Add(1))
}
