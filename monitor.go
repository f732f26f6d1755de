package mixmaster

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tphakala/go-audio-mixmaster/internal/graph"
	"github.com/tphakala/go-audio-mixmaster/internal/resample"
	"go.uber.org/zap"
)

// State is the monitor's playback state.
type State int

const (
	// StateIdle has no asset and no real-time graph.
	StateIdle State = iota
	// StateLoaded has a decoded asset and a connected, silent chain.
	StateLoaded
	// StatePlaying has one source feeding the chain.
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithLogger sets the monitor's logger. The default discards everything.
func WithLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSessionRate converts every loaded asset to hz before building the
// graph, the way a browser audio context decodes at the output device's
// rate. Zero keeps each asset's own rate.
func WithSessionRate(hz int) MonitorOption {
	return func(m *Monitor) { m.sessionRate = hz }
}

// WithStateListener registers fn to be called after every state change.
// Listeners run on the goroutine that caused the change, after the monitor
// has released its lock.
func WithStateListener(fn func(State)) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// WithAssetSource sets where Load fetches references from. The default is
// URLSource.
func WithAssetSource(src AssetSource) MonitorOption {
	return func(m *Monitor) {
		if src != nil {
			m.assets = src
		}
	}
}

// WithDecoder sets the decoder used by Load. The default is WAVDecoder.
func WithDecoder(d Decoder) MonitorOption {
	return func(m *Monitor) {
		if d != nil {
			m.decoder = d
		}
	}
}

// WithInitialParams sets the params the first chain is built with.
func WithInitialParams(p Params) MonitorOption {
	return func(m *Monitor) { m.params = p.Clamp() }
}

// Monitor is the live preview session: one real-time graph bound to one
// device, a persistent chain and at most one playing source.
//
// All methods are safe for concurrent use. The natural end of playback is
// reported by the device side and moves the monitor from StatePlaying back
// to StateLoaded.
type Monitor struct {
	mu          sync.Mutex
	device      Device
	assets      AssetSource
	decoder     Decoder
	sessionRate int
	logger      *zap.Logger
	listeners   []func(State)

	state   State
	params  Params
	closed  bool
	session *liveSession
}

// liveSession is everything that exists only between Load and Unload.
type liveSession struct {
	ctx    *graph.RealtimeContext
	chain  *Chain
	buffer *Buffer
	source *graph.BufferSource
}

// NewMonitor returns an idle monitor that will play through device.
func NewMonitor(device Device, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		device:  device,
		assets:  URLSource{},
		decoder: WAVDecoder{},
		logger:  zap.NewNop(),
		params:  DefaultParams(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load fetches ref, decodes it and builds the chain with the current params,
// leaving the monitor Loaded. Whatever was loaded before is released first.
// A fetch or decode failure wraps ErrDecodeFailure and leaves the monitor
// Idle; the caller may retry with another asset.
func (m *Monitor) Load(ctx context.Context, ref string) error {
	if err := m.unloadForLoad(); err != nil {
		return err
	}

	buf, err := m.fetchAndDecode(ctx, ref)
	if err != nil {
		m.logger.Warn("asset load failed", zap.String("ref", ref), zap.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.install(buf)
}

// LoadBuffer installs an already decoded buffer, converting it to the
// session rate when one is set.
func (m *Monitor) LoadBuffer(buf *Buffer) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if err := m.unloadForLoad(); err != nil {
		return err
	}
	converted, err := m.toSessionRate(buf)
	if err != nil {
		return err
	}
	return m.install(converted)
}

func (m *Monitor) unloadForLoad() error {
	return m.locked(func() error {
		if m.closed {
			return ErrMonitorClosed
		}
		m.releaseLocked()
		return nil
	})
}

func (m *Monitor) fetchAndDecode(ctx context.Context, ref string) (*Buffer, error) {
	rc, err := m.assets.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read asset: %w", ErrDecodeFailure, err)
	}

	buf, err := m.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return m.toSessionRate(buf)
}

func (m *Monitor) toSessionRate(buf *Buffer) (*Buffer, error) {
	if m.sessionRate <= 0 || m.sessionRate == buf.SampleRate {
		return buf, nil
	}
	channels, err := resample.Convert(buf.Channels, buf.SampleRate, m.sessionRate)
	if err != nil {
		return nil, fmt.Errorf("%w: convert to %d Hz: %w", ErrDecodeFailure, m.sessionRate, err)
	}
	m.logger.Debug("asset converted to session rate",
		zap.Int("from", buf.SampleRate),
		zap.Int("to", m.sessionRate))
	return &Buffer{SampleRate: m.sessionRate, Channels: channels}, nil
}

// install builds the real-time graph for buf. Every failure path closes
// what was opened and leaves the monitor Idle.
func (m *Monitor) install(buf *Buffer) error {
	return m.locked(func() error {
		if m.closed {
			return ErrMonitorClosed
		}
		m.releaseLocked()

		rtx, err := graph.NewRealtimeContext(m.device, buf.SampleRate, buf.NumChannels(), m.logger)
		if err != nil {
			return err
		}
		chain, err := BuildChain(m.params, rtx)
		if err == nil {
			err = rtx.Connect(chain.Output(), rtx.Destination())
		}
		if err != nil {
			_ = rtx.Close()
			return err
		}

		m.session = &liveSession{ctx: rtx, chain: chain, buffer: buf}
		m.state = StateLoaded
		m.logger.Info("asset loaded",
			zap.Int("sample_rate", buf.SampleRate),
			zap.Int("channels", buf.NumChannels()),
			zap.Duration("duration", buf.Duration()))
		return nil
	})
}

// Play starts the loaded asset from the beginning. A source that is already
// playing is stopped and discarded first, so two sources never overlap.
func (m *Monitor) Play() error {
	return m.locked(func() error {
		if m.closed {
			return ErrMonitorClosed
		}
		s := m.session
		if s == nil {
			return ErrNotLoaded
		}
		m.stopSourceLocked()

		src := s.ctx.CreateBufferSource(s.buffer.Channels)
		if err := s.ctx.Connect(src, s.chain.Input()); err != nil {
			return err
		}
		src.SetOnEnded(func() { m.handleEnded(src) })
		if err := src.Start(); err != nil {
			s.ctx.Disconnect(src)
			return err
		}

		s.source = src
		m.state = StatePlaying
		return nil
	})
}

// Stop silences playback and returns to Loaded. It is a no-op when nothing
// is playing.
func (m *Monitor) Stop() {
	_ = m.locked(func() error {
		if m.state == StatePlaying {
			m.stopSourceLocked()
			m.state = StateLoaded
		}
		return nil
	})
}

// handleEnded runs when a source finishes. Notifications from a source that
// has since been replaced or stopped are ignored.
func (m *Monitor) handleEnded(src *graph.BufferSource) {
	_ = m.locked(func() error {
		s := m.session
		if s == nil || s.source != src {
			return nil
		}
		s.ctx.Disconnect(src)
		s.source = nil
		m.state = StateLoaded
		m.logger.Debug("playback ended")
		return nil
	})
}

// Unload releases the graph and returns to Idle.
func (m *Monitor) Unload() error {
	return m.locked(func() error {
		return m.releaseLocked()
	})
}

// Close unloads and rejects further use. Closing twice is a no-op.
func (m *Monitor) Close() error {
	return m.locked(func() error {
		if m.closed {
			return nil
		}
		m.closed = true
		return m.releaseLocked()
	})
}

// SetParams applies all four settings at once.
func (m *Monitor) SetParams(p Params) error {
	return m.update(p.Validate, func(c *Chain) error { return c.Apply(p) }, func() { m.params = p })
}

// SetGain sets the linear output gain.
func (m *Monitor) SetGain(v float64) error {
	return m.update(func() error { return validateGain(v) },
		func(c *Chain) error { return c.SetGain(v) },
		func() { m.params.Gain = v })
}

// SetLowEQ sets the low shelf gain in dB.
func (m *Monitor) SetLowEQ(db float64) error {
	return m.update(func() error { return validateEQ("low", db) },
		func(c *Chain) error { return c.SetLowEQ(db) },
		func() { m.params.LowEQ = db })
}

// SetMidEQ sets the mid peak gain in dB.
func (m *Monitor) SetMidEQ(db float64) error {
	return m.update(func() error { return validateEQ("mid", db) },
		func(c *Chain) error { return c.SetMidEQ(db) },
		func() { m.params.MidEQ = db })
}

// SetHighEQ sets the high shelf gain in dB.
func (m *Monitor) SetHighEQ(db float64) error {
	return m.update(func() error { return validateEQ("high", db) },
		func(c *Chain) error { return c.SetHighEQ(db) },
		func() { m.params.HighEQ = db })
}

// update validates, pushes the change to the live chain if there is one and
// records it for the next load. No state transition happens.
func (m *Monitor) update(validate func() error, apply func(*Chain) error, record func()) error {
	if err := validate(); err != nil {
		return err
	}
	return m.locked(func() error {
		if m.closed {
			return ErrMonitorClosed
		}
		if m.session != nil {
			if err := apply(m.session.chain); err != nil {
				return err
			}
		}
		record()
		return nil
	})
}

// Snapshot returns the loaded buffer and the current params for an export.
func (m *Monitor) Snapshot() (*Buffer, Params, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, m.params, ErrDecodeUnavailable
	}
	return m.session.buffer, m.params, nil
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Params returns the current settings.
func (m *Monitor) Params() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// SampleRate returns the rate of the loaded graph, or zero when Idle.
func (m *Monitor) SampleRate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return 0
	}
	return m.session.ctx.SampleRate()
}

// stopSourceLocked detaches and stops the playing source, if any.
func (m *Monitor) stopSourceLocked() {
	s := m.session
	if s == nil || s.source == nil {
		return
	}
	src := s.source
	s.source = nil
	s.ctx.Disconnect(src)
	src.Stop()
}

// releaseLocked tears down the session and returns to Idle.
func (m *Monitor) releaseLocked() error {
	s := m.session
	if s == nil {
		m.state = StateIdle
		return nil
	}
	m.stopSourceLocked()
	m.session = nil
	m.state = StateIdle
	m.logger.Debug("session released")
	return s.ctx.Close()
}

// locked runs fn under m.mu and then tells listeners about a state change.
func (m *Monitor) locked(fn func() error) error {
	m.mu.Lock()
	before := m.state
	err := fn()
	after := m.state
	listeners := m.listeners
	m.mu.Unlock()

	if after != before {
		for _, l := range listeners {
			l(after)
		}
	}
	return err
}
