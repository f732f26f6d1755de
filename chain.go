package mixmaster

import (
	"fmt"
	"sync"
)

// Chain owns the four stages of one built chain. Setters validate before
// touching a stage and are safe to call while the context renders.
type Chain struct {
	mu     sync.Mutex
	params Params

	low  *FilterStage
	mid  *FilterStage
	high *FilterStage
	gain *GainStage
}

// BuildChain creates low shelf → mid peak → high shelf → gain inside ctx,
// connects them in that order and sets each stage from params. Invalid params
// fail with ErrInvalidParameter before any node is created. The chain's
// output is not connected; callers route it to the destination.
func BuildChain(params Params, ctx ProcessingContext) (*Chain, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil processing context", ErrInvalidParameter)
	}

	c := &Chain{
		params: params,
		low:    ctx.CreateShelfFilter(LowShelf, LowShelfFrequency),
		mid:    ctx.CreatePeakFilter(MidPeakFrequency, MidPeakQ),
		high:   ctx.CreateShelfFilter(HighShelf, HighShelfFrequency),
		gain:   ctx.CreateGainStage(),
	}
	c.low.SetGain(params.LowEQ)
	c.mid.SetGain(params.MidEQ)
	c.high.SetGain(params.HighEQ)
	c.gain.SetGain(params.Gain)

	links := [][2]Node{
		{c.low, c.mid},
		{c.mid, c.high},
		{c.high, c.gain},
	}
	for _, l := range links {
		if err := ctx.Connect(l[0], l[1]); err != nil {
			return nil, fmt.Errorf("connect chain: %w", err)
		}
	}
	return c, nil
}

// Input returns the head of the chain, where a source connects.
func (c *Chain) Input() Node { return c.low }

// Output returns the tail of the chain.
func (c *Chain) Output() Node { return c.gain }

// Stages returns the stages in signal order.
func (c *Chain) Stages() (low, mid, high *FilterStage, gain *GainStage) {
	return c.low, c.mid, c.high, c.gain
}

// Params returns the settings currently applied.
func (c *Chain) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Apply validates p and updates every stage.
func (c *Chain) Apply(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.low.SetGain(p.LowEQ)
	c.mid.SetGain(p.MidEQ)
	c.high.SetGain(p.HighEQ)
	c.gain.SetGain(p.Gain)
	c.params = p
	return nil
}

// SetGain updates the linear output gain.
func (c *Chain) SetGain(v float64) error {
	if err := validateGain(v); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gain.SetGain(v)
	c.params.Gain = v
	return nil
}

// SetLowEQ updates the low shelf gain in dB.
func (c *Chain) SetLowEQ(db float64) error {
	return c.setEQ("low", db, c.low, &c.params.LowEQ)
}

// SetMidEQ updates the mid peak gain in dB.
func (c *Chain) SetMidEQ(db float64) error {
	return c.setEQ("mid", db, c.mid, &c.params.MidEQ)
}

// SetHighEQ updates the high shelf gain in dB.
func (c *Chain) SetHighEQ(db float64) error {
	return c.setEQ("high", db, c.high, &c.params.HighEQ)
}

func (c *Chain) setEQ(band string, db float64, stage *FilterStage, field *float64) error {
	if err := validateEQ(band, db); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stage.SetGain(db)
	*field = db
	return nil
}
