package mixmaster

import (
	"fmt"
	"math"
)

// Params is one snapshot of the chain settings.
type Params struct {
	// Gain is a linear multiplier in [0, 2].
	Gain float64
	// LowEQ, MidEQ and HighEQ are stage gains in dB, each in [-12, 12].
	LowEQ  float64
	MidEQ  float64
	HighEQ float64
}

// DefaultParams returns unity gain with a flat EQ.
func DefaultParams() Params {
	return Params{Gain: defaultGain}
}

// Validate rejects NaN, infinities and values outside the parameter domains.
func (p Params) Validate() error {
	if err := validateGain(p.Gain); err != nil {
		return err
	}
	if err := validateEQ("low", p.LowEQ); err != nil {
		return err
	}
	if err := validateEQ("mid", p.MidEQ); err != nil {
		return err
	}
	return validateEQ("high", p.HighEQ)
}

// Clamp returns a copy with every field forced into its domain, the way the
// tool's sliders bound user input. NaN maps to the default value.
func (p Params) Clamp() Params {
	return Params{
		Gain:   clampValue(p.Gain, MinGain, MaxGain, defaultGain),
		LowEQ:  clampValue(p.LowEQ, MinEQ, MaxEQ, 0),
		MidEQ:  clampValue(p.MidEQ, MinEQ, MaxEQ, 0),
		HighEQ: clampValue(p.HighEQ, MinEQ, MaxEQ, 0),
	}
}

// IsIdentity reports whether the chain leaves audio unchanged.
func (p Params) IsIdentity() bool {
	return p == DefaultParams()
}

func (p Params) String() string {
	return fmt.Sprintf("gain=%.2f low=%+.1fdB mid=%+.1fdB high=%+.1fdB", p.Gain, p.LowEQ, p.MidEQ, p.HighEQ)
}

func validateGain(v float64) error {
	if math.IsNaN(v) || v < MinGain || v > MaxGain {
		return fmt.Errorf("%w: gain %v outside [%v, %v]", ErrInvalidParameter, v, MinGain, MaxGain)
	}
	return nil
}

func validateEQ(band string, v float64) error {
	if math.IsNaN(v) || v < MinEQ || v > MaxEQ {
		return fmt.Errorf("%w: %s EQ %v dB outside [%v, %v]", ErrInvalidParameter, band, v, MinEQ, MaxEQ)
	}
	return nil
}

func clampValue(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return max(lo, min(hi, v))
}
