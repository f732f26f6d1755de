package graph

import "sync"

// BufferSource plays a set of channel slices once from the start.
//
// A mono source feeding a multi-channel context is copied to every channel.
// Otherwise source channels map one to one and missing channels are silent.
type BufferSource struct {
	nodeLinks
	data [][]float64

	// position is touched only by the rendering goroutine under ctx.mu.
	position int

	mu      sync.Mutex
	started bool
	stopped bool
	ended   bool
	onEnded func()
}

// Length returns the number of frames the source plays.
func (s *BufferSource) Length() int {
	if len(s.data) == 0 {
		return 0
	}
	return len(s.data[0])
}

// SetOnEnded registers fn to run once the source has finished, either at
// the end of its data or after Stop. Realtime contexts call fn on its own
// goroutine.
func (s *BufferSource) SetOnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

// Start begins playback at offset zero from the next quantum. A source can
// be started only once.
func (s *BufferSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrSourceStarted
	}
	s.started = true
	return nil
}

// Stop silences the source immediately. Stopping an unstarted or finished
// source is a no-op.
func (s *BufferSource) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped || s.ended {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.ended = true
	fn := s.onEnded
	s.mu.Unlock()

	if fn != nil {
		s.ctx.dispatch(fn)
	}
}

// Playing reports whether the source has been started and not yet ended.
func (s *BufferSource) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.ended
}

func (s *BufferSource) endedCallback() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onEnded
}

// markEnded flags a natural end. It reports false if Stop got there first.
func (s *BufferSource) markEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	s.ended = true
	return true
}

func (s *BufferSource) render(buf [][]float64) {
	s.mu.Lock()
	active := s.started && !s.stopped
	s.mu.Unlock()

	if !active {
		clearBuffer(buf)
		return
	}
	length := s.Length()
	if s.position >= length {
		clearBuffer(buf)
		if s.markEnded() {
			s.ctx.ended = append(s.ctx.ended, s)
		}
		return
	}

	frames := len(buf[0])
	n := min(frames, length-s.position)
	for ch, out := range buf {
		src := s.channelFor(ch)
		if src == nil {
			clear(out)
			continue
		}
		copy(out, src[s.position:s.position+n])
		clear(out[n:])
	}
	s.position += n

	if s.position >= length && s.markEnded() {
		s.ctx.ended = append(s.ctx.ended, s)
	}
}

func (s *BufferSource) channelFor(ch int) []float64 {
	switch {
	case len(s.data) == 1:
		return s.data[0]
	case ch < len(s.data):
		return s.data[ch]
	default:
		return nil
	}
}
