package testutil

import (
	"sync"
	"time"
)

// FixedClock is a manually advanced clock in a fixed zone.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewFixedClock returns a clock frozen at now. A nil loc means UTC.
func NewFixedClock(now time.Time, loc *time.Location) *FixedClock {
	if loc == nil {
		loc = time.UTC
	}
	return &FixedClock{now: now, loc: loc}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Location() *time.Location {
	return c.loc
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// MustLoadLocation loads a zone or panics. Tests import time/tzdata so the
// lookup never depends on the host.
func MustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
