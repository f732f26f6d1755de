package graph

import (
	"fmt"
)

// OfflineContext renders a fixed number of frames into memory as fast as
// possible. It renders once; afterwards it behaves as closed.
type OfflineContext struct {
	*baseContext
	length int
}

// NewOfflineContext returns a context that renders length frames of
// channels channels at sampleRate.
func NewOfflineContext(channels, length, sampleRate int) (*OfflineContext, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidContext, length)
	}
	base, err := newBaseContext(sampleRate, channels, func(fn func()) { fn() })
	if err != nil {
		return nil, err
	}
	return &OfflineContext{baseContext: base, length: length}, nil
}

// Length returns the number of frames StartRendering produces.
func (c *OfflineContext) Length() int { return c.length }

// StartRendering pulls the whole graph and returns the destination's
// output, one slice per channel. A panic inside a node is returned as an
// error wrapping ErrRenderPanic and no partial output is returned.
func (c *OfflineContext) StartRendering() (out [][]float64, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrContextClosed
	}
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	}()

	out = make([][]float64, c.channels)
	for ch := range out {
		out[ch] = make([]float64, c.length)
	}

	for offset := 0; offset < c.length; offset += RenderQuantum {
		ended := c.renderStep()
		n := min(RenderQuantum, c.length-offset)
		for ch := range out {
			copy(out[ch][offset:offset+n], c.scratch[ch][:n])
		}
		c.notifyEnded(ended)
	}
	return out, nil
}

func (c *OfflineContext) renderStep() []*BufferSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderQuantum()
	return c.takeEnded()
}
