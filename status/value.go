package status

import (
	"math"
	"sync/atomic"
)

// Float is an atomic float64. The zero value reads as 0.0
type Float struct {
	bits atomic.Uint64
}

// Store replaces the value
func (f *Float) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Load returns the current value
func (f *Float) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add adds d and returns the new value
func (f *Float) Add(d float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + d
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// textCap bounds stored strings; metric labels are short identifiers
// and an unbounded value would let a hot path pin arbitrary memory
const textCap = 48

// Text is an atomic short string. The zero value reads as ""
type Text struct {
	p atomic.Pointer[string]
}

// Store replaces the value, truncated to the label cap
func (t *Text) Store(v string) {
	if len(v) > textCap {
		v = v[:textCap]
	}
	t.p.Store(&v)
}

// Load returns the current value
func (t *Text) Load() string {
	if s := t.p.Load(); s != nil {
		return *s
	}
	return ""
}
