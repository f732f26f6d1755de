// Package resample converts decoded audio to the session sample rate with a
// rational polyphase FIR.
//
// The ratio out/in is reduced to L/M. Output sample j sits at input time
// j·M/L; its integer part selects the input window and its fractional part
// selects one of the bank's phases. Ratios whose L exceeds filter.MaxPhases
// use a quantized phase.
package resample

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tphakala/go-audio-mixmaster/internal/filter"
	"github.com/tphakala/simd/f64"
)

const (
	minRate = 1000
	maxRate = 768000

	// Attenuation used when Config leaves it unset.
	defaultAttenuation = 100.0
)

// ErrInvalidConfig indicates invalid converter configuration.
var ErrInvalidConfig = errors.New("invalid resample configuration")

// Config holds converter configuration.
type Config struct {
	// InputRate is the sample rate of the source audio in Hz.
	InputRate int

	// OutputRate is the target sample rate in Hz.
	OutputRate int

	// Attenuation is the stopband attenuation in dB. Zero selects 100 dB.
	Attenuation float64

	// EnableParallel converts channels concurrently in ProcessMulti.
	EnableParallel bool
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InputRate < minRate || c.InputRate > maxRate {
		return fmt.Errorf("%w: input rate %d outside %d-%d Hz", ErrInvalidConfig, c.InputRate, minRate, maxRate)
	}
	if c.OutputRate < minRate || c.OutputRate > maxRate {
		return fmt.Errorf("%w: output rate %d outside %d-%d Hz", ErrInvalidConfig, c.OutputRate, minRate, maxRate)
	}
	if c.Attenuation < 0 {
		return fmt.Errorf("%w: negative attenuation", ErrInvalidConfig)
	}
	return nil
}

// Converter resamples whole channels. It holds no per-stream state and is
// safe for concurrent use.
type Converter struct {
	config Config
	up     int // L
	down   int // M
	bank   *filter.PolyphaseBank
}

// New designs the filter bank for cfg.
func New(cfg Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Attenuation == 0 {
		cfg.Attenuation = defaultAttenuation
	}

	g := gcd(cfg.InputRate, cfg.OutputRate)
	c := &Converter{
		config: cfg,
		up:     cfg.OutputRate / g,
		down:   cfg.InputRate / g,
	}
	if c.up == c.down {
		return c, nil
	}

	bank, err := filter.DesignPolyphaseBank(filter.BankParams{
		Phases:      min(c.up, filter.MaxPhases),
		Ratio:       c.Ratio(),
		Attenuation: cfg.Attenuation,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.bank = bank
	return c, nil
}

// Ratio returns output rate over input rate.
func (c *Converter) Ratio() float64 {
	return float64(c.up) / float64(c.down)
}

// OutputLength returns the number of samples Process yields for n inputs.
func (c *Converter) OutputLength(n int) int {
	if n <= 0 {
		return 0
	}
	return int((int64(n)*int64(c.up) + int64(c.down) - 1) / int64(c.down))
}

// Latency returns the filter's one-sided span in input samples. Output is
// already delay-compensated; this is the look-ahead at the stream edges.
func (c *Converter) Latency() int {
	if c.bank == nil {
		return 0
	}
	return c.bank.Half
}

// Process converts one channel. The input is not modified.
func (c *Converter) Process(input []float64) []float64 {
	if c.bank == nil {
		return append([]float64(nil), input...)
	}

	n := len(input)
	outLen := c.OutputLength(n)
	output := make([]float64, outLen)
	if outLen == 0 {
		return output
	}

	half := c.bank.Half
	width := c.bank.Width()
	pad := half + 1
	padded := make([]float64, n+2*pad)
	copy(padded[pad:], input)

	up, down := int64(c.up), int64(c.down)
	phases := int64(c.bank.Phases)
	for j := range outLen {
		pos := int64(j) * down
		i0 := pos / up
		rem := pos % up

		phase := rem
		if phases != up {
			phase = (rem*phases + up/2) / up
			if phase == phases {
				i0++
				phase = 0
			}
		}

		start := int(i0) - half + pad
		output[j] = f64.DotProduct(c.bank.Taps[phase], padded[start:start+width])
	}
	return output
}

// ProcessMulti converts every channel.
// When EnableParallel is set, channels are converted concurrently.
func (c *Converter) ProcessMulti(input [][]float64) ([][]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidConfig)
	}
	for ch := 1; ch < len(input); ch++ {
		if len(input[ch]) != len(input[0]) {
			return nil, fmt.Errorf("%w: channel %d length %d, want %d", ErrInvalidConfig, ch, len(input[ch]), len(input[0]))
		}
	}

	output := make([][]float64, len(input))

	if !c.config.EnableParallel || len(input) <= 1 {
		for ch := range input {
			output[ch] = c.Process(input[ch])
		}
		return output, nil
	}

	var wg sync.WaitGroup
	for ch := range input {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			output[channel] = c.Process(input[channel])
		}(ch)
	}
	wg.Wait()

	return output, nil
}

// Convert is a one-shot helper for callers that convert a single buffer.
func Convert(input [][]float64, inputRate, outputRate int) ([][]float64, error) {
	conv, err := New(Config{InputRate: inputRate, OutputRate: outputRate, EnableParallel: true})
	if err != nil {
		return nil, err
	}
	return conv.ProcessMulti(input)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
