package engine

import (
	"sync/atomic"
	"time"
)

// Clock is the scheduler's time source. Frame staleness is judged
// against it, so substituting a manual clock makes those paths
// testable without sleeping
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real-time Clock used when Options.Clock is nil
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when Advance is called. Safe for concurrent use
type ManualClock struct {
	nanos atomic.Int64
}

// NewManualClock creates a manual clock starting at the given instant
func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{}
	c.nanos.Store(start.UnixNano())
	return c
}

// Now returns the clock's current instant
func (c *ManualClock) Now() time.Time {
	return time.Unix(0, c.nanos.Load())
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.nanos.Add(int64(d))
}
