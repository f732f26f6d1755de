package main

import (
	"fmt"
	"io"
	"os"

	mixmaster "github.com/tphakala/go-audio-mixmaster"
	"github.com/tphakala/go-audio-mixmaster/internal/analysis"
	"go.uber.org/zap"
)

// Frames rendered for the impulse response.
const impulseFrames = 8192

type analyzeCmd struct {
	ChainFlags `embed:""`

	Rate int `default:"44100" env:"MIXMASTER_RATE" help:"Sample rate to analyze at"`
}

func (c *analyzeCmd) Run(logger *zap.Logger) error {
	params, err := c.params()
	if err != nil {
		return err
	}
	bands, err := chainResponse(params, c.Rate)
	if err != nil {
		return err
	}
	logger.Debug("response measured", zap.Stringer("params", params), zap.Int("rate", c.Rate))
	printResponse(os.Stdout, params, bands)
	return nil
}

// chainResponse renders an impulse through the chain and samples its
// magnitude at the octave centers and the three stage frequencies.
func chainResponse(params mixmaster.Params, rate int) ([]analysis.Band, error) {
	impulse, err := mixmaster.NewBuffer(rate, [][]float64{analysis.Impulse(impulseFrames)})
	if err != nil {
		return nil, err
	}
	out, err := mixmaster.RenderOffline(impulse, params)
	if err != nil {
		return nil, err
	}
	spec, err := analysis.Response(out.Channels[0], rate)
	if err != nil {
		return nil, err
	}

	var freqs []float64
	for _, f := range analysis.OctaveCenters {
		if f < float64(rate)/2 {
			freqs = append(freqs, f)
		}
	}
	bands := spec.Bands(freqs)
	for _, f := range []float64{mixmaster.LowShelfFrequency, mixmaster.MidPeakFrequency, mixmaster.HighShelfFrequency} {
		if f < float64(rate)/2 {
			bands = append(bands, analysis.Band{Frequency: f, GainDB: spec.MagnitudeDB(f)})
		}
	}
	return bands, nil
}

func printResponse(w io.Writer, params mixmaster.Params, bands []analysis.Band) {
	_, _ = fmt.Fprintf(w, "Chain response (%s)\n", params)
	for _, b := range bands {
		_, _ = fmt.Fprintf(w, "  %8.1f Hz  %+6.2f dB\n", b.Frequency, b.GainDB)
	}
}
