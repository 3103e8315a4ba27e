package testutil

import (
	"sync"
	"time"
)

// DefaultTime is the instant a new Clock starts at: 2024-03-09 12:00:00 UTC.
var DefaultTime = time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced wall clock for tests.
//
// Export folder names embed the current date and time; with a Clock the same
// test produces the same folder name on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock stopped at start. A zero start means DefaultTime.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = DefaultTime
	}
	return &Clock{now: start}
}

// Now returns the current instant. It has the signature of time.Now so it
// can be passed wherever a clock function is expected.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset puts the clock back to DefaultTime.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = DefaultTime
}
