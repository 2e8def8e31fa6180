package testfixtures

import (
	"sync"
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// Clock is a settable time source. Calendar days are taken in its location.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc returns Now for injection; a nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Today returns the calendar date of Now.
func (c *Clock) Today() clinic.Date {
	return clinic.Today(c.Now())
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// AdvanceDays moves the clock forward by n calendar days.
func (c *Clock) AdvanceDays(n int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.AddDate(0, 0, n)
	return c.current
}
