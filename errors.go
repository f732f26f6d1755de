package mixmaster

import (
	"errors"

	"github.com/tphakala/go-audio-mixmaster/internal/graph"
)

// Errors returned by the engine. Match them with errors.Is; the wrapped
// message carries the detail.
var (
	// ErrInvalidParameter indicates a gain or EQ value outside its domain.
	ErrInvalidParameter = errors.New("invalid processing parameter")

	// ErrInvalidBuffer indicates a buffer with an impossible shape.
	ErrInvalidBuffer = errors.New("invalid audio buffer")

	// ErrDecodeUnavailable indicates that no decoded audio is present.
	ErrDecodeUnavailable = errors.New("no decoded audio available")

	// ErrDecodeFailure indicates that an asset could not be fetched or decoded.
	ErrDecodeFailure = errors.New("audio decode failed")

	// ErrRenderFailure indicates that an offline render failed.
	ErrRenderFailure = errors.New("offline render failed")

	// ErrNotLoaded is returned by Monitor.Play while nothing is loaded.
	ErrNotLoaded = errors.New("no audio loaded")

	// ErrMonitorClosed is returned by a Monitor after Close.
	ErrMonitorClosed = errors.New("monitor closed")

	// ErrExportDenied is returned when the export gate refuses an export.
	ErrExportDenied = errors.New("export not permitted")

	// ErrWAVTooLarge means the audio does not fit a 32-bit RIFF container.
	ErrWAVTooLarge = errors.New("audio too large for a WAV file")
)

// Graph errors, re-exported for callers that drive a ProcessingContext.
var (
	ErrInputInUse        = graph.ErrInputInUse
	ErrOutputInUse       = graph.ErrOutputInUse
	ErrContextClosed     = graph.ErrContextClosed
	ErrForeignNode       = graph.ErrForeignNode
	ErrInvalidConnection = graph.ErrInvalidConnection
)
