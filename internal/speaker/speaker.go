// Package speaker plays a real-time graph through the system audio output
// using beep's speaker.
package speaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// ErrRateMismatch is returned when a graph asks for a different rate than
// the one the output was initialized with. The speaker can be initialized
// only once per process.
var ErrRateMismatch = errors.New("speaker already running at another sample rate")

// ErrBusy is returned when Open is called while a graph is attached.
var ErrBusy = errors.New("speaker already in use")

// DefaultLatency is the speaker buffer length used when none is given.
const DefaultLatency = 100 * time.Millisecond

// Device adapts the speaker to the graph's pull callback. The speaker is
// initialized on the first Open.
type Device struct {
	latency time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	initRate int
	attached bool
}

// New returns a Device with the given buffer latency.
func New(latency time.Duration, logger *zap.Logger) *Device {
	if latency <= 0 {
		latency = DefaultLatency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{latency: latency, logger: logger}
}

// Open starts pulling frames from render.
func (d *Device) Open(sampleRate, channels int, render func(out [][]float64)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.attached {
		return ErrBusy
	}
	if d.initRate == 0 {
		sr := beep.SampleRate(sampleRate)
		if err := speaker.Init(sr, sr.N(d.latency)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		d.initRate = sampleRate
		d.logger.Info("speaker initialized",
			zap.Int("sample_rate", sampleRate),
			zap.Duration("latency", d.latency))
	} else if d.initRate != sampleRate {
		return fmt.Errorf("%w: %d Hz, want %d Hz", ErrRateMismatch, sampleRate, d.initRate)
	}

	speaker.Play(newStereoStreamer(channels, render))
	d.attached = true
	return nil
}

// Close detaches the graph. Once Close returns the render callback is no
// longer running.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attached {
		speaker.Clear()
		d.attached = false
	}
	return nil
}

// Rate returns the rate the speaker runs at, or zero before the first Open.
func (d *Device) Rate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initRate
}

// stereoStreamer pulls planar frames from the graph and lays them out as
// beep's stereo pairs. Mono is sent to both sides; channels past the
// second are dropped.
type stereoStreamer struct {
	channels int
	render   func([][]float64)
	planes   [][]float64
	views    [][]float64
}

func newStereoStreamer(channels int, render func([][]float64)) *stereoStreamer {
	return &stereoStreamer{
		channels: channels,
		render:   render,
		planes:   make([][]float64, channels),
		views:    make([][]float64, channels),
	}
}

func (s *stereoStreamer) Stream(samples [][2]float64) (int, bool) {
	n := len(samples)
	for ch := range s.planes {
		if cap(s.planes[ch]) < n {
			s.planes[ch] = make([]float64, n)
		}
		s.views[ch] = s.planes[ch][:n]
	}
	s.render(s.views)

	left := s.views[0]
	right := left
	if s.channels > 1 {
		right = s.views[1]
	}
	for i := range samples {
		samples[i][0] = left[i]
		samples[i][1] = right[i]
	}
	return n, true
}

func (s *stereoStreamer) Err() error { return nil }
