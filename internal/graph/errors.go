package graph

import "errors"

var (
	// ErrInputInUse is returned when connecting into a node that already has an input.
	ErrInputInUse = errors.New("node input already connected")

	// ErrOutputInUse is returned when connecting a node that already feeds another node.
	ErrOutputInUse = errors.New("node output already connected")

	// ErrForeignNode is returned when a node from another context is connected.
	ErrForeignNode = errors.New("node belongs to a different context")

	// ErrInvalidConnection covers connections the topology cannot express.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrContextClosed is returned by a context that has been closed or already rendered.
	ErrContextClosed = errors.New("context closed")

	// ErrInvalidContext indicates an impossible context shape.
	ErrInvalidContext = errors.New("invalid context configuration")

	// ErrSourceStarted is returned when a single-use source is started twice.
	ErrSourceStarted = errors.New("source already started")

	// ErrRenderPanic wraps a panic recovered while rendering.
	ErrRenderPanic = errors.New("panic during render")
)
