package mixmaster

import "github.com/tphakala/go-audio-mixmaster/internal/graph"

// ProcessingContext creates and connects the stages of a chain. Both the
// offline renderer and the monitor build their chain through it.
type ProcessingContext = graph.Context

// Node is a stage that can be connected inside a ProcessingContext.
type Node = graph.Node

// GainStage is a linear gain node.
type GainStage = graph.GainStage

// FilterStage is a biquad node with a runtime gain in dB.
type FilterStage = graph.FilterStage

// ShelfKind selects a low or high shelf.
type ShelfKind = graph.ShelfKind

// Device is an audio output pulled by the monitor's real-time graph.
type Device = graph.Device

const (
	LowShelf  = graph.LowShelf
	HighShelf = graph.HighShelf
)

// RenderQuantum is the number of frames between parameter updates.
const RenderQuantum = graph.RenderQuantum
