package mixmaster

import (
	"fmt"

	"github.com/tphakala/go-audio-mixmaster/internal/graph"
)

// RenderOffline runs input through the chain configured with params and
// returns a new buffer with the same sample rate, channel count and length.
//
// Every call builds its own offline context, so calls never share state.
// A render cannot be cancelled once started. Failures return no partial
// output: a missing input wraps ErrDecodeUnavailable, bad params
// ErrInvalidParameter and anything that goes wrong while rendering
// ErrRenderFailure.
func RenderOffline(input *Buffer, params Params) (*Buffer, error) {
	if input == nil || input.Channels == nil {
		return nil, ErrDecodeUnavailable
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, err := graph.NewOfflineContext(input.NumChannels(), input.Len(), input.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	chain, err := BuildChain(params, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	source := ctx.CreateBufferSource(input.Channels)
	if err := ctx.Connect(source, chain.Input()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	if err := ctx.Connect(chain.Output(), ctx.Destination()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	if err := source.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	rendered, err := ctx.StartRendering()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return &Buffer{SampleRate: input.SampleRate, Channels: rendered}, nil
}
