package filter

import (
	"math"
	"math/cmplx"

	"github.com/tphakala/go-audio-mixmaster/internal/mathutil"
)

const (
	// Slope of the shelving designs. S=1 is the steepest slope that stays
	// monotonic in magnitude.
	shelfSlope = 1.0

	// Normalized frequency bounds (fraction of Nyquist).
	minNormalizedFreq = 0.0
	maxNormalizedFreq = 1.0

	nyquistDivisor = 2.0
)

// Coefficients holds one second-order section normalized so that a0 = 1.
//
// The sign convention is Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward
	A1, A2     float64 // feedback
}

// Identity returns a pass-through section.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// scalar returns a section that multiplies by k.
func scalar(k float64) Coefficients {
	return Coefficients{B0: k}
}

// normalizedFrequency maps a corner frequency to [0, 1] relative to Nyquist.
func normalizedFrequency(frequency float64, sampleRate int) float64 {
	nyquist := float64(sampleRate) / nyquistDivisor
	f := frequency / nyquist
	return max(minNormalizedFreq, min(maxNormalizedFreq, f))
}

// LowShelf designs a low-shelf section boosting or cutting everything below
// frequency by gainDB. At Nyquist the whole band gets the shelf gain, at 0 Hz
// the section is a pass-through.
func LowShelf(sampleRate int, frequency, gainDB float64) Coefficients {
	f := normalizedFrequency(frequency, sampleRate)
	a := mathutil.DBToShelfAmplitude(gainDB)

	switch {
	case f >= maxNormalizedFreq:
		return scalar(a * a)
	case f <= minNormalizedFreq:
		return Identity()
	}

	w0 := math.Pi * f
	cw := math.Cos(w0)
	beta := shelfBeta(w0, a)

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalize(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf section boosting or cutting everything above
// frequency by gainDB. At Nyquist it is a pass-through, at 0 Hz the whole band
// gets the shelf gain.
func HighShelf(sampleRate int, frequency, gainDB float64) Coefficients {
	f := normalizedFrequency(frequency, sampleRate)
	a := mathutil.DBToShelfAmplitude(gainDB)

	switch {
	case f >= maxNormalizedFreq:
		return Identity()
	case f <= minNormalizedFreq:
		return scalar(a * a)
	}

	w0 := math.Pi * f
	cw := math.Cos(w0)
	beta := shelfBeta(w0, a)

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Peaking designs a bell section centered on frequency with bandwidth q.
// A non-positive q degenerates to a flat gain of A².
func Peaking(sampleRate int, frequency, q, gainDB float64) Coefficients {
	f := normalizedFrequency(frequency, sampleRate)
	a := mathutil.DBToShelfAmplitude(gainDB)

	if f <= minNormalizedFreq || f >= maxNormalizedFreq {
		return Identity()
	}
	if q <= 0 {
		return scalar(a * a)
	}

	w0 := math.Pi * f
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalize(b0, b1, b2, a0, a1, a2)
}

// shelfBeta returns 2·√A·α for the cookbook shelf with slope S.
func shelfBeta(w0, a float64) float64 {
	alpha := math.Sin(w0) / 2 * math.Sqrt((a+1/a)*(1/shelfSlope-1)+2)
	return 2 * math.Sqrt(a) * alpha
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	inv := 1 / a0
	return Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}

// Response computes H(e^jω) at frequency (Hz) for the given sample rate.
func (c Coefficients) Response(frequency float64, sampleRate int) complex128 {
	w := 2 * math.Pi * frequency / float64(sampleRate)
	z1 := cmplx.Exp(complex(0, -w))
	z2 := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// MagnitudeDB returns the section's gain in dB at frequency.
func (c Coefficients) MagnitudeDB(frequency float64, sampleRate int) float64 {
	return mathutil.AmplitudeToDB(cmplx.Abs(c.Response(frequency, sampleRate)))
}
