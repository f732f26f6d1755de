package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-mixmaster/internal/mathutil"
)

const (
	// Phase counts above this are quantized; the error stays below the
	// converter's noise floor for monitoring.
	MaxPhases = 256

	defaultAttenuation = 100.0
	defaultPassband    = 0.9
)

// PolyphaseBank is a lowpass prototype split into Phases sub-filters, stored
// in input order: Taps[p][m] weights input sample i0-Half+m for phase p.
type PolyphaseBank struct {
	Taps   [][]float64
	Phases int
	Half   int // taps on either side of the center sample
}

// BankParams configures a bank for one conversion ratio.
type BankParams struct {
	// Phases is the number of fractional positions per input sample.
	Phases int
	// Ratio is output rate over input rate.
	Ratio float64
	// Attenuation is the stopband attenuation in dB (default 100).
	Attenuation float64
	// Passband is the fraction of the narrower Nyquist band kept flat (default 0.9).
	Passband float64
}

// Validate checks the bank parameters and fills in defaults.
func (p *BankParams) Validate() error {
	if p.Phases < 1 || p.Phases > MaxPhases {
		return fmt.Errorf("%w: %d phases (must be 1-%d)", ErrInvalidDesign, p.Phases, MaxPhases)
	}
	if p.Ratio <= 0 || math.IsInf(p.Ratio, 0) || math.IsNaN(p.Ratio) {
		return fmt.Errorf("%w: ratio %v", ErrInvalidDesign, p.Ratio)
	}
	if p.Attenuation == 0 {
		p.Attenuation = defaultAttenuation
	}
	if p.Passband == 0 {
		p.Passband = defaultPassband
	}
	if p.Passband <= 0 || p.Passband >= 1 {
		return fmt.Errorf("%w: passband %v outside (0, 1)", ErrInvalidDesign, p.Passband)
	}
	return nil
}

// DesignPolyphaseBank designs a prototype at Phases times the input rate and
// decomposes it. Each phase sums to roughly 1 so DC passes at unity gain.
func DesignPolyphaseBank(params BankParams) (*PolyphaseBank, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	band := min(1.0, params.Ratio)
	taps := mathutil.EstimateFilterLength(params.Attenuation, (1-params.Passband)*band)
	half := (taps + 1) / 2

	phases := params.Phases
	length := 2*half*phases + 1
	prototype, err := DesignLowPass(LowPassParams{
		NumTaps:     length,
		Cutoff:      (1 + params.Passband) / 2 * maxCutoff * band / float64(phases),
		Attenuation: params.Attenuation,
		Gain:        float64(phases),
	})
	if err != nil {
		return nil, fmt.Errorf("prototype: %w", err)
	}

	return decompose(prototype, phases, half), nil
}

// decompose splits the prototype so that phase p, position m multiplies the
// input sample at offset m-half from the reference sample.
func decompose(prototype []float64, phases, half int) *PolyphaseBank {
	center := half * phases
	width := 2*half + 1
	bank := &PolyphaseBank{
		Taps:   make([][]float64, phases),
		Phases: phases,
		Half:   half,
	}
	for p := range phases {
		row := make([]float64, width)
		for m := range width {
			idx := center + p + (half-m)*phases
			if idx >= 0 && idx < len(prototype) {
				row[m] = prototype[idx]
			}
		}
		bank.Taps[p] = row
	}
	return bank
}

// Width returns the number of input samples each phase reads.
func (b *PolyphaseBank) Width() int {
	return 2*b.Half + 1
}
