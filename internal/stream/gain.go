package stream

import (
	"math"
	"sync/atomic"
)

// Gain is a linear volume multiplier shared between the command thread and
// the device callback. Reads and writes are lock-free; a write becomes
// visible to the callback no later than its next buffer.
type Gain struct {
	bits atomic.Uint64
}

// NewGain returns a Gain set to the given multiplier.
func NewGain(v float64) *Gain {
	g := &Gain{}
	g.Set(v)
	return g
}

// Set stores a new multiplier. Values are used as-is; callers clamp.
func (g *Gain) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Value returns the current multiplier.
func (g *Gain) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}
