// Package graph is a small pull-model audio graph with the node types the
// mixing chain needs: buffer sources, biquad filters, gain stages and a
// destination. The same nodes run inside an OfflineContext, which renders a
// fixed number of frames into memory, or a RealtimeContext, which is pulled by
// an output device.
//
// Rendering proceeds in quanta of RenderQuantum frames. Node parameters are
// read once per quantum, so a parameter change lands on the next quantum
// boundary of whichever goroutine is rendering.
package graph

import (
	"fmt"
	"sync"
)

// RenderQuantum is the number of frames processed per graph pull.
const RenderQuantum = 128

// Node is anything that can be connected in a context's graph. Every node has
// at most one input and one output.
type Node interface {
	// render fills buf (one slice per channel, RenderQuantum frames each).
	render(buf [][]float64)
	links() *nodeLinks
}

type nodeLinks struct {
	ctx    *baseContext
	input  Node
	output Node
}

func (l *nodeLinks) links() *nodeLinks { return l }

// pullInput renders the upstream node into buf, or silence when unconnected.
func (l *nodeLinks) pullInput(buf [][]float64) {
	if l.input == nil {
		clearBuffer(buf)
		return
	}
	l.input.render(buf)
}

// Context creates nodes and owns their connections.
type Context interface {
	SampleRate() int
	NumChannels() int
	CreateGainStage() *GainStage
	CreateShelfFilter(kind ShelfKind, frequency float64) *FilterStage
	CreatePeakFilter(frequency, q float64) *FilterStage
	CreateBufferSource(channels [][]float64) *BufferSource
	Connect(from, to Node) error
	Disconnect(from Node)
	Destination() Node
}

// baseContext is shared by the offline and realtime contexts. mu guards the
// topology and is held for the whole of each quantum render.
type baseContext struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	dest       *destinationNode
	closed     bool

	// dispatch runs ended callbacks outside mu.
	dispatch func(fn func())
	ended    []*BufferSource
	scratch  [][]float64
}

func newBaseContext(sampleRate, channels int, dispatch func(fn func())) (*baseContext, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidContext, sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidContext, channels)
	}
	c := &baseContext{
		sampleRate: sampleRate,
		channels:   channels,
		dispatch:   dispatch,
		scratch:    newBuffer(channels, RenderQuantum),
	}
	c.dest = &destinationNode{nodeLinks: nodeLinks{ctx: c}}
	return c, nil
}

// SampleRate returns the context's sample rate in Hz.
func (c *baseContext) SampleRate() int { return c.sampleRate }

// NumChannels returns the number of channels every node renders.
func (c *baseContext) NumChannels() int { return c.channels }

// Destination returns the sink node.
func (c *baseContext) Destination() Node { return c.dest }

// CreateGainStage returns an unconnected gain stage with unity gain.
func (c *baseContext) CreateGainStage() *GainStage {
	g := &GainStage{nodeLinks: nodeLinks{ctx: c}}
	g.gain.Store(1)
	return g
}

// CreateShelfFilter returns an unconnected shelf filter at 0 dB.
func (c *baseContext) CreateShelfFilter(kind ShelfKind, frequency float64) *FilterStage {
	ft := FilterLowShelf
	if kind == HighShelf {
		ft = FilterHighShelf
	}
	return newFilterStage(c, ft, frequency, 0)
}

// CreatePeakFilter returns an unconnected peaking filter at 0 dB.
func (c *baseContext) CreatePeakFilter(frequency, q float64) *FilterStage {
	return newFilterStage(c, FilterPeaking, frequency, q)
}

// CreateBufferSource returns a single-use source over channels. The slices
// are read, never written, and must not be modified while the source plays.
func (c *baseContext) CreateBufferSource(channels [][]float64) *BufferSource {
	return &BufferSource{nodeLinks: nodeLinks{ctx: c}, data: channels}
}

// Connect routes from's output into to's input. Connecting an existing pair
// again is a no-op.
func (c *baseContext) Connect(from, to Node) error {
	if from == nil || to == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidConnection)
	}
	fl, tl := from.links(), to.links()
	if fl.ctx != c || tl.ctx != c {
		return ErrForeignNode
	}
	if from == Node(c.dest) {
		return fmt.Errorf("%w: destination has no output", ErrInvalidConnection)
	}
	if _, ok := to.(*BufferSource); ok {
		return fmt.Errorf("%w: source has no input", ErrInvalidConnection)
	}
	if from == to {
		return fmt.Errorf("%w: node connected to itself", ErrInvalidConnection)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContextClosed
	}
	if fl.output == to && tl.input == from {
		return nil
	}
	if tl.input != nil {
		return ErrInputInUse
	}
	if fl.output != nil {
		return ErrOutputInUse
	}
	if c.reaches(to, from) {
		return fmt.Errorf("%w: connection would form a cycle", ErrInvalidConnection)
	}

	fl.output = to
	tl.input = from
	return nil
}

// reaches reports whether walking downstream from n arrives at target.
func (c *baseContext) reaches(n, target Node) bool {
	for n != nil {
		if n == target {
			return true
		}
		n = n.links().output
	}
	return false
}

// Disconnect removes from's outgoing connection, if any.
func (c *baseContext) Disconnect(from Node) {
	if from == nil || from.links().ctx != c {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fl := from.links()
	if fl.output != nil {
		fl.output.links().input = nil
		fl.output = nil
	}
}

// renderQuantum pulls one quantum into c.scratch. Callers hold c.mu.
func (c *baseContext) renderQuantum() {
	if c.closed {
		clearBuffer(c.scratch)
		return
	}
	c.dest.render(c.scratch)
}

// takeEnded returns and clears the sources that ended since the last call.
// Callers hold c.mu.
func (c *baseContext) takeEnded() []*BufferSource {
	ended := c.ended
	c.ended = nil
	return ended
}

// notifyEnded schedules the ended callbacks of sources, outside c.mu.
func (c *baseContext) notifyEnded(sources []*BufferSource) {
	for _, s := range sources {
		if fn := s.endedCallback(); fn != nil {
			c.dispatch(fn)
		}
	}
}

type destinationNode struct {
	nodeLinks
}

func (d *destinationNode) render(buf [][]float64) {
	d.pullInput(buf)
}

func newBuffer(channels, frames int) [][]float64 {
	buf := make([][]float64, channels)
	backing := make([]float64, channels*frames)
	for ch := range buf {
		buf[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	return buf
}

func clearBuffer(buf [][]float64) {
	for _, ch := range buf {
		clear(ch)
	}
}
