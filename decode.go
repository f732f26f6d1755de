package mixmaster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// Decoder turns encoded asset bytes into a Buffer.
type Decoder interface {
	Decode(data []byte) (*Buffer, error)
}

// WAV format tags accepted by WAVDecoder
const (
	wavFormatExtensible = 0xFFFE

	// WAVE_FORMAT_EXTENSIBLE fmt chunks carry the real format code in the
	// first two bytes of the sub-format GUID at this offset.
	wavSubFormatOffset = 24

	bitDepth8  = 8
	bitDepth16 = 16
	bitDepth24 = 24
	bitDepth32 = 32

	// 8-bit WAV samples are unsigned around this midpoint.
	unsigned8Offset = 128
)

// WAVDecoder decodes integer PCM WAV at 8, 16, 24 or 32 bits. Samples are
// normalized with the inverse of the encoder's asymmetric scale, so 16-bit
// files written by EncodeWAV decode to within one step of their source.
type WAVDecoder struct{}

// Decode parses a complete WAV file held in memory.
func (d WAVDecoder) Decode(data []byte) (*Buffer, error) {
	return d.DecodeReader(bytes.NewReader(data))
}

// DecodeReader parses a WAV stream. All failures wrap ErrDecodeFailure.
func (WAVDecoder) DecodeReader(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrDecodeFailure)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: unsupported WAV format tag %d", ErrDecodeFailure, dec.WavAudioFormat)
	}
	if dec.WavAudioFormat == wavFormatExtensible {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		sub, err := wavSubFormat(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		if sub != wavFormatPCM {
			return nil, fmt.Errorf("%w: unsupported extensible sub-format %d", ErrDecodeFailure, sub)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		dec = wav.NewDecoder(r)
		if !dec.IsValidFile() {
			return nil, fmt.Errorf("%w: not a WAV file", ErrDecodeFailure)
		}
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case bitDepth8, bitDepth16, bitDepth24, bitDepth32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecodeFailure, bitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrDecodeFailure)
	}

	numChannels := pcm.Format.NumChannels
	frames := len(pcm.Data) / numChannels
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	deinterleavePCM(pcm, channels, bitDepth)

	return NewBuffer(pcm.Format.SampleRate, channels)
}

// wavSubFormat walks the RIFF chunks of r up to the fmt chunk and returns
// the effective format code: the sub-format of an extensible header, or the
// plain format tag otherwise.
func wavSubFormat(r io.Reader) (uint16, error) {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errors.New("missing fmt chunk")
			}
			return 0, err
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		fmtData := make([]byte, min(chunk.Size, wavSubFormatOffset+2))
		if _, err := io.ReadFull(chunk, fmtData); err != nil {
			return 0, err
		}
		if len(fmtData) < 2 {
			return 0, errors.New("short fmt chunk")
		}
		tag := binary.LittleEndian.Uint16(fmtData)
		if tag != wavFormatExtensible {
			return tag, nil
		}
		if len(fmtData) < wavSubFormatOffset+2 {
			return 0, errors.New("extensible fmt chunk without sub-format")
		}
		return binary.LittleEndian.Uint16(fmtData[wavSubFormatOffset:]), nil
	}
}

// deinterleavePCM splits interleaved integer samples into channels,
// scaling negatives by 2^(b-1) and positives by 2^(b-1)-1.
func deinterleavePCM(pcm *audio.IntBuffer, channels [][]float64, bitDepth int) {
	data := pcm.Data
	full := float64(int64(1) << (bitDepth - 1))
	invNeg := 1 / full
	invPos := 1 / (full - 1)

	numChannels := len(channels)
	frames := len(channels[0])
	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			s := data[base+ch]
			if bitDepth == bitDepth8 {
				s -= unsigned8Offset
			}
			if s < 0 {
				channels[ch][i] = float64(s) * invNeg
			} else {
				channels[ch][i] = float64(s) * invPos
			}
		}
	}
}
