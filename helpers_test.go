package mixmaster

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRate = 44100

// noiseBuffer returns reproducible noise scaled to amplitude.
func noiseBuffer(t testing.TB, channels, frames int, amplitude float64) *Buffer {
	t.Helper()
	rng := rand.New(rand.NewPCG(uint64(channels), uint64(frames)))
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
		for i := range data[ch] {
			data[ch][i] = amplitude * (2*rng.Float64() - 1)
		}
	}
	buf, err := NewBuffer(testRate, data)
	require.NoError(t, err)
	return buf
}

func sineBuffer(t testing.TB, freq float64, frames int) *Buffer {
	t.Helper()
	data := make([]float64, frames)
	for i := range data {
		data[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	buf, err := NewBuffer(testRate, [][]float64{data})
	require.NoError(t, err)
	return buf
}
