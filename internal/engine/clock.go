package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies wall-clock time to the reducer.
//
// Wall time is used for entity timestamps and for the two deadline checks in
// the storefront: the added-to-cart flash and the order cancellation window.
// Neither is a scheduled task; both compare a stored instant against Now().
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Sequencer is a monotonic logical clock that numbers transitions.
//
// Every Dispatch call is stamped with Next(), including rejected ones, so the
// journal and observers see a gap-free sequence.
//
// Thread-safety: Sequencer is safe for concurrent use (atomic operations).
type Sequencer struct {
	seq atomic.Int64
}

// NewSequencer creates a sequencer starting at 0.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// NewSequencerAt creates a sequencer starting at a specific sequence number.
// Used to resume numbering after the journal's last recorded seq.
func NewSequencerAt(start int64) *Sequencer {
	s := &Sequencer{}
	s.seq.Store(start)
	return s
}

// Next returns the next sequence number and increments the sequencer.
func (s *Sequencer) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (s *Sequencer) Current() int64 {
	return s.seq.Load()
}
