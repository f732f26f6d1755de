// Package analysis measures rendered audio: the magnitude response of a
// processed impulse and simple peak and RMS levels.
package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-audio-mixmaster/internal/mathutil"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidInput is returned for empty signals or non-positive rates.
var ErrInvalidInput = errors.New("invalid analysis input")

const (
	// minFFTSize keeps the bin spacing usable for short impulses.
	minFFTSize = 4096

	// silenceDB is reported for an all-zero signal.
	silenceDB = -200.0
)

// OctaveCenters are the ISO octave band centers from 31.5 Hz to 16 kHz.
var OctaveCenters = []float64{31.5, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// Spectrum is the one-sided FFT of a real signal.
type Spectrum struct {
	SampleRate int
	Size       int
	Bins       []complex128
}

// Response transforms an impulse response, zero-padded to a power of two of
// at least minFFTSize samples.
func Response(impulse []float64, sampleRate int) (*Spectrum, error) {
	if len(impulse) == 0 || sampleRate <= 0 {
		return nil, ErrInvalidInput
	}
	size := minFFTSize
	for size < len(impulse) {
		size *= 2
	}
	padded := make([]float64, size)
	copy(padded, impulse)

	fft := fourier.NewFFT(size)
	return &Spectrum{
		SampleRate: sampleRate,
		Size:       size,
		Bins:       fft.Coefficients(nil, padded),
	}, nil
}

// BinWidth returns the frequency spacing between bins in Hz.
func (s *Spectrum) BinWidth() float64 {
	return float64(s.SampleRate) / float64(s.Size)
}

// MagnitudeDB returns the magnitude at freq in dB, linearly interpolated
// between the two nearest bins. Frequencies outside [0, Nyquist] clamp to
// the edge bins.
func (s *Spectrum) MagnitudeDB(freq float64) float64 {
	pos := freq / s.BinWidth()
	last := float64(len(s.Bins) - 1)
	pos = math.Max(0, math.Min(pos, last))

	lo := int(pos)
	hi := min(lo+1, len(s.Bins)-1)
	frac := pos - float64(lo)
	mag := (1-frac)*cmplx.Abs(s.Bins[lo]) + frac*cmplx.Abs(s.Bins[hi])
	return mathutil.AmplitudeToDB(mag)
}

// Band is one measured point of a response.
type Band struct {
	Frequency float64
	GainDB    float64
}

// Bands samples the response at each frequency.
func (s *Spectrum) Bands(freqs []float64) []Band {
	out := make([]Band, len(freqs))
	for i, f := range freqs {
		out[i] = Band{Frequency: f, GainDB: s.MagnitudeDB(f)}
	}
	return out
}

// Impulse returns a unit impulse of length frames.
func Impulse(frames int) []float64 {
	if frames <= 0 {
		return nil
	}
	x := make([]float64, frames)
	x[0] = 1
	return x
}

// Level summarizes the loudness of a signal.
type Level struct {
	PeakDB float64
	RMSDB  float64
}

// Measure returns the peak and RMS level of samples in dBFS.
func Measure(samples []float64) Level {
	if len(samples) == 0 {
		return Level{PeakDB: silenceDB, RMSDB: silenceDB}
	}
	var peak float64
	for _, v := range samples {
		peak = max(peak, math.Abs(v))
	}
	rms := math.Sqrt(f64.DotProduct(samples, samples) / float64(len(samples)))
	return Level{PeakDB: toDB(peak), RMSDB: toDB(rms)}
}

// MeasureChannels returns the loudest peak and the mean-square RMS across
// channels.
func MeasureChannels(channels [][]float64) Level {
	var peak, energy float64
	var n int
	for _, ch := range channels {
		for _, v := range ch {
			peak = max(peak, math.Abs(v))
		}
		energy += f64.DotProduct(ch, ch)
		n += len(ch)
	}
	if n == 0 {
		return Level{PeakDB: silenceDB, RMSDB: silenceDB}
	}
	return Level{PeakDB: toDB(peak), RMSDB: toDB(math.Sqrt(energy / float64(n)))}
}

func toDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return silenceDB
	}
	return mathutil.AmplitudeToDB(amplitude)
}
