// Package filter designs the filters used by the mixing engine: the
// cookbook biquads of the EQ chain and the Kaiser-windowed sinc prototype
// behind the session-rate converter.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-mixmaster/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 32767

	windowCenterDivisor = 2.0
	sincZeroThreshold   = 1e-10

	// Upper bound of the normalized cutoff (cycles per sample).
	maxCutoff = 0.5
)

// ErrInvalidDesign is returned for filter parameters that cannot produce a filter.
var ErrInvalidDesign = errors.New("invalid filter design")

// KaiserWindow generates a symmetric Kaiser window of the given length.
//
//	w[n] = I₀(β·√(1 - ((n - α)/α)²)) / I₀(β),  α = (N-1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / windowCenterDivisor
	i0Beta := mathutil.BesselI0(beta)
	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}
	return window
}

// LowPassParams describes a windowed-sinc lowpass prototype.
type LowPassParams struct {
	// NumTaps is the filter length. Odd lengths give an integer group delay.
	NumTaps int

	// Cutoff is the normalized cutoff frequency in (0, 0.5).
	Cutoff float64

	// Attenuation is the stopband attenuation in dB; it selects the Kaiser β.
	Attenuation float64

	// Gain is the DC gain the taps are normalized to.
	Gain float64
}

// Validate checks that the parameters describe a realizable filter.
func (p *LowPassParams) Validate() error {
	if p.NumTaps < minFilterTaps || p.NumTaps > maxFilterTaps {
		return fmt.Errorf("%w: %d taps (must be %d-%d)", ErrInvalidDesign, p.NumTaps, minFilterTaps, maxFilterTaps)
	}
	if p.Cutoff <= 0 || p.Cutoff >= maxCutoff {
		return fmt.Errorf("%w: cutoff %f outside (0, 0.5)", ErrInvalidDesign, p.Cutoff)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("%w: negative attenuation %f dB", ErrInvalidDesign, p.Attenuation)
	}
	if p.Gain <= 0 {
		return fmt.Errorf("%w: gain %f must be positive", ErrInvalidDesign, p.Gain)
	}
	return nil
}

// DesignLowPass returns Kaiser-windowed sinc taps normalized to params.Gain at DC.
func DesignLowPass(params LowPassParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	window := KaiserWindow(params.NumTaps, mathutil.KaiserBeta(params.Attenuation))
	taps := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / windowCenterDivisor

	for n := range params.NumTaps {
		x := float64(n) - center
		var sinc float64
		if math.Abs(x) < sincZeroThreshold {
			sinc = 2 * params.Cutoff
		} else {
			sinc = math.Sin(2*math.Pi*params.Cutoff*x) / (math.Pi * x)
		}
		taps[n] = sinc * window[n]
	}

	if sum := f64.Sum(taps); math.Abs(sum) > sincZeroThreshold {
		f64.Scale(taps, taps, params.Gain/sum)
	}
	return taps, nil
}

// FIRMagnitude evaluates |H(f)| of an FIR filter at the normalized frequency f.
func FIRMagnitude(taps []float64, f float64) float64 {
	omega := 2 * math.Pi * f
	var re, im float64
	for n, h := range taps {
		angle := omega * float64(n)
		re += h * math.Cos(angle)
		im -= h * math.Sin(angle)
	}
	return math.Hypot(re, im)
}
