package mixmaster

import "time"

// Fixed filter stage layout
const (
	// LowShelfFrequency is the low shelf corner in Hz.
	LowShelfFrequency = 200.0

	// MidPeakFrequency is the mid peak center in Hz.
	MidPeakFrequency = 1000.0

	// MidPeakQ is the mid peak bandwidth.
	MidPeakQ = 1.0

	// HighShelfFrequency is the high shelf corner in Hz.
	HighShelfFrequency = 3000.0
)

// Parameter domains
const (
	MinGain = 0.0
	MaxGain = 2.0

	MinEQ = -12.0 // dB
	MaxEQ = 12.0  // dB

	defaultGain = 1.0
)

// WAV container layout
const (
	wavHeaderSize     = 44
	wavFmtChunkSize   = 16
	wavFormatPCM      = 1
	wavBitsPerSample  = 16
	wavBytesPerSample = wavBitsPerSample / 8
	wavRIFFOverhead   = 36 // header bytes counted by the RIFF size field

	// Asymmetric 16-bit scale: negatives reach -32768, positives 32767.
	pcmNegativeScale = 32768.0
	pcmPositiveScale = 32767.0
)

// ReleaseDelay is how long SaveAs keeps the saved handle open before
// releasing it.
const ReleaseDelay = 100 * time.Millisecond

// mixedSuffix is appended to a track title to name its export.
const mixedSuffix = "_mixed.wav"
