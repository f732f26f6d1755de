package graph

import (
	"math"
	"sync/atomic"
)

// atomicFloat is a float64 readable from the render goroutine while the
// control goroutine writes it.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
