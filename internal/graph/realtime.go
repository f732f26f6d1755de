package graph

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Device is an audio output that pulls frames through a render callback.
// Open starts calling render from the device's own goroutine, each call
// asking for len(out[0]) frames on every channel. Close stops the callbacks
// and returns once no callback is running.
type Device interface {
	Open(sampleRate, channels int, render func(out [][]float64)) error
	Close() error
}

// RealtimeContext drives the graph from an output Device.
type RealtimeContext struct {
	*baseContext
	device    Device
	ring      *frameRing
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewRealtimeContext opens device and starts rendering the destination into
// it. The graph is silent until something is connected.
func NewRealtimeContext(device Device, sampleRate, channels int, logger *zap.Logger) (*RealtimeContext, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidContext)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := newBaseContext(sampleRate, channels, func(fn func()) { go fn() })
	if err != nil {
		return nil, err
	}

	c := &RealtimeContext{
		baseContext: base,
		device:      device,
		ring:        newFrameRing(channels, 4*RenderQuantum),
		logger:      logger,
	}
	if err := device.Open(sampleRate, channels, c.fill); err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	logger.Debug("realtime context opened",
		zap.Int("sample_rate", sampleRate),
		zap.Int("channels", channels))
	return c, nil
}

// fill is the device callback.
func (c *RealtimeContext) fill(out [][]float64) {
	if len(out) != c.channels {
		clearBuffer(out)
		return
	}
	var ended []*BufferSource

	c.mu.Lock()
	want := len(out[0])
	for c.ring.Available() < want {
		c.renderQuantum()
		c.ring.Write(c.scratch)
		ended = append(ended, c.takeEnded()...)
	}
	c.ring.ReadInto(out)
	c.mu.Unlock()

	c.notifyEnded(ended)
}

// Close stops the device. Nodes stay valid but render silence, and further
// connections fail with ErrContextClosed.
func (c *RealtimeContext) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.ring.Clear()
		c.mu.Unlock()

		c.closeErr = c.device.Close()
		c.logger.Debug("realtime context closed", zap.Error(c.closeErr))
	})
	return c.closeErr
}
