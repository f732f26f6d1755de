package graph

import "github.com/tphakala/simd/f64"

// GainStage multiplies its input by a linear gain.
type GainStage struct {
	nodeLinks
	gain atomicFloat
}

// Gain returns the current linear gain.
func (g *GainStage) Gain() float64 { return g.gain.Load() }

// SetGain sets the linear gain from the next quantum on.
func (g *GainStage) SetGain(v float64) { g.gain.Store(v) }

func (g *GainStage) render(buf [][]float64) {
	g.pullInput(buf)
	gain := g.gain.Load()
	if gain == 1 {
		return
	}
	for _, ch := range buf {
		f64.Scale(ch, ch, gain)
	}
}
