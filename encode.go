package mixmaster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// frames encoded per write
const encodeBlockFrames = 4096

// EncodeWAV returns buf as a canonical 16-bit PCM WAV file. A nil,
// zero-channel or zero-length buffer encodes to a 44-byte header with a
// zero data size. A buffer whose data would overflow the 32-bit RIFF size
// fields encodes to nil; use WriteWAV to get the ErrWAVTooLarge error.
func EncodeWAV(buf *Buffer) []byte {
	if checkWAVSize(buf.Len(), buf.NumChannels()) != nil {
		return nil
	}
	var out bytes.Buffer
	out.Grow(wavHeaderSize + buf.Len()*buf.NumChannels()*wavBytesPerSample)
	// Writes to a bytes.Buffer cannot fail.
	_ = WriteWAV(&out, buf)
	return out.Bytes()
}

// WriteWAV streams buf to w in the same layout as EncodeWAV: a 44-byte
// header followed by interleaved little-endian int16 frames.
func WriteWAV(w io.Writer, buf *Buffer) error {
	channels := buf.NumChannels()
	frames := buf.Len()
	if channels == 0 {
		frames = 0
	}
	sampleRate := 0
	if buf != nil {
		sampleRate = buf.SampleRate
	}
	if err := checkWAVSize(frames, channels); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(wavHeader(sampleRate, channels, frames)); err != nil {
		return err
	}

	block := make([]byte, encodeBlockFrames*channels*wavBytesPerSample)
	for start := 0; start < frames; start += encodeBlockFrames {
		n := min(encodeBlockFrames, frames-start)
		out := block[:n*channels*wavBytesPerSample]
		interleavePCM16(out, buf.Channels, start, n)
		if _, err := bw.Write(out); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// checkWAVSize reports ErrWAVTooLarge when the data chunk of a 16-bit file
// with the given shape cannot be described by the uint32 RIFF size field.
func checkWAVSize(frames, channels int) error {
	if frames <= 0 || channels <= 0 {
		return nil
	}
	dataSize := uint64(frames) * uint64(channels) * wavBytesPerSample
	if dataSize > math.MaxUint32-wavRIFFOverhead {
		return fmt.Errorf("%w: %d frames x %d channels needs %d data bytes",
			ErrWAVTooLarge, frames, channels, dataSize)
	}
	return nil
}

// wavHeader builds the 44-byte RIFF/WAVE header for 16-bit PCM.
func wavHeader(sampleRate, channels, frames int) []byte {
	dataSize := frames * channels * wavBytesPerSample
	blockAlign := channels * wavBytesPerSample
	byteRate := sampleRate * blockAlign

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(wavRIFFOverhead+dataSize))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavFmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], wavBitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header
}

// interleavePCM16 writes frames [start, start+n) of every channel into dst,
// channel by channel within each frame. Short channels pad with silence.
func interleavePCM16(dst []byte, channels [][]float64, start, n int) {
	numChannels := len(channels)
	for i := range n {
		base := i * numChannels * wavBytesPerSample
		for ch, samples := range channels {
			var s int16
			if idx := start + i; idx < len(samples) {
				s = pcm16(samples[idx])
			}
			binary.LittleEndian.PutUint16(dst[base+ch*wavBytesPerSample:], uint16(s))
		}
	}
}

// pcm16 clamps x to [-1, 1] and scales it asymmetrically, truncating toward
// zero. NaN encodes as silence.
func pcm16(x float64) int16 {
	switch {
	case math.IsNaN(x):
		return 0
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}
	if x < 0 {
		return int16(x * pcmNegativeScale)
	}
	return int16(x * pcmPositiveScale)
}
