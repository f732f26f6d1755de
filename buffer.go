package mixmaster

import (
	"fmt"
	"time"
)

// Buffer is decoded audio: a sample rate and one equal-length slice of
// samples per channel, nominally in [-1, 1].
//
// Buffers are treated as immutable once built. Operations that transform
// audio return a new Buffer and leave their input untouched.
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// NewBuffer validates the shape and wraps channels without copying.
func NewBuffer(sampleRate int, channels [][]float64) (*Buffer, error) {
	b := &Buffer{SampleRate: sampleRate, Channels: channels}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewSilentBuffer allocates a zeroed buffer.
func NewSilentBuffer(sampleRate, numChannels, length int) (*Buffer, error) {
	if numChannels < 1 || length < 0 {
		return nil, fmt.Errorf("%w: %d channels of %d frames", ErrInvalidBuffer, numChannels, length)
	}
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, length)
	}
	return NewBuffer(sampleRate, channels)
}

// Validate checks that the rate is positive, there is at least one channel
// and all channels have the same length. Zero-length channels are valid.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	n := len(b.Channels[0])
	for ch, samples := range b.Channels[1:] {
		if len(samples) != n {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidBuffer, ch+1, len(samples), n)
		}
	}
	return nil
}

// Len returns the number of frames.
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Duration returns the playing time.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Len()) * time.Second / time.Duration(b.SampleRate)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{SampleRate: b.SampleRate, Channels: make([][]float64, len(b.Channels))}
	for ch, samples := range b.Channels {
		out.Channels[ch] = make([]float64, len(samples))
		copy(out.Channels[ch], samples)
	}
	return out
}
