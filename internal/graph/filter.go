package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/tphakala/go-audio-mixmaster/internal/filter"
)

// ShelfKind selects the side of a shelving filter.
type ShelfKind int

const (
	// LowShelf boosts or cuts below the corner frequency.
	LowShelf ShelfKind = iota
	// HighShelf boosts or cuts above the corner frequency.
	HighShelf
)

func (k ShelfKind) String() string {
	switch k {
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return fmt.Sprintf("ShelfKind(%d)", int(k))
	}
}

// FilterType identifies the response of a FilterStage.
type FilterType int

const (
	FilterLowShelf FilterType = iota
	FilterHighShelf
	FilterPeaking
)

func (t FilterType) String() string {
	switch t {
	case FilterLowShelf:
		return "lowshelf"
	case FilterHighShelf:
		return "highshelf"
	case FilterPeaking:
		return "peaking"
	default:
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
}

// FilterStage is a biquad node with a fixed type, frequency and Q and a
// runtime gain in dB. Each channel keeps its own filter state.
type FilterStage struct {
	nodeLinks
	kind      FilterType
	frequency float64
	q         float64

	gainDB atomicFloat
	coeffs atomic.Pointer[filter.Coefficients]

	sections []filter.Section
}

func newFilterStage(c *baseContext, kind FilterType, frequency, q float64) *FilterStage {
	f := &FilterStage{
		nodeLinks: nodeLinks{ctx: c},
		kind:      kind,
		frequency: frequency,
		q:         q,
		sections:  make([]filter.Section, c.channels),
	}
	f.SetGain(0)
	return f
}

// Type returns the filter response type.
func (f *FilterStage) Type() FilterType { return f.kind }

// Frequency returns the corner or center frequency in Hz.
func (f *FilterStage) Frequency() float64 { return f.frequency }

// Q returns the peaking bandwidth; zero for shelves.
func (f *FilterStage) Q() float64 { return f.q }

// Gain returns the current gain in dB.
func (f *FilterStage) Gain() float64 { return f.gainDB.Load() }

// SetGain sets the gain in dB. The new coefficients are published in one
// step and picked up at the next quantum.
func (f *FilterStage) SetGain(db float64) {
	c := f.design(db)
	f.gainDB.Store(db)
	f.coeffs.Store(&c)
}

// Coefficients returns the coefficients currently in effect.
func (f *FilterStage) Coefficients() filter.Coefficients {
	return *f.coeffs.Load()
}

func (f *FilterStage) design(db float64) filter.Coefficients {
	rate := f.ctx.sampleRate
	switch f.kind {
	case FilterLowShelf:
		return filter.LowShelf(rate, f.frequency, db)
	case FilterHighShelf:
		return filter.HighShelf(rate, f.frequency, db)
	default:
		return filter.Peaking(rate, f.frequency, f.q, db)
	}
}

func (f *FilterStage) render(buf [][]float64) {
	f.pullInput(buf)
	c := *f.coeffs.Load()
	for ch, samples := range buf {
		s := &f.sections[ch]
		s.Coefficients = c
		s.ProcessBlock(samples)
	}
}
