package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start instant for ManualClock.
var Epoch = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

// ManualClock is a wall clock that only moves when told to.
//
// Unlike engine.SystemClock, ManualClock can be set and advanced so deadline
// checks (cancellation window, added-to-cart flash) are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock reading start. A zero start means Epoch.
func NewManualClock(start time.Time) *ManualClock {
	if start.IsZero() {
		start = Epoch
	}
	return &ManualClock{now: start}
}

// Now returns the current manual time.
//
// Implements engine.Clock interface.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
