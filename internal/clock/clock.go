// Package clock abstracts the time source so that hold deadlines and
// countdowns can be tested against a controlled clock instead of time.Now.
package clock

import "time"

// Clock supplies the current instant.  All timestamps in this service are
// UTC; implementations must return UTC times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a Clock backed by time.Now.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock pinned to a settable instant.  Tests advance it manually.
type Fixed struct {
	now time.Time
}

// NewFixed returns a Fixed clock starting at t.
func NewFixed(t time.Time) *Fixed { return &Fixed{now: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.now }

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.now = f.now.Add(d) }

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) { f.now = t.UTC() }
