package mixmaster

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawWAV builds a canonical PCM WAV around already encoded sample bytes.
func rawWAV(sampleRate, channels, bits, format int, samples []byte) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	blockAlign := channels * bits / 8

	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+len(samples)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, le, uint32(16))
	_ = binary.Write(&b, le, uint16(format))
	_ = binary.Write(&b, le, uint16(channels))
	_ = binary.Write(&b, le, uint32(sampleRate))
	_ = binary.Write(&b, le, uint32(sampleRate*blockAlign))
	_ = binary.Write(&b, le, uint16(blockAlign))
	_ = binary.Write(&b, le, uint16(bits))
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(len(samples)))
	b.Write(samples)
	return b.Bytes()
}

func TestWAVDecoder_8Bit(t *testing.T) {
	data := rawWAV(8000, 1, 8, 1, []byte{0, 128, 255, 64})

	buf, err := WAVDecoder{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 8000, buf.SampleRate)
	require.Equal(t, 1, buf.NumChannels())
	assert.InDeltaSlice(t, []float64{-1, 0, 1, -0.5}, buf.Channels[0], 1e-12)
}

func TestWAVDecoder_16BitStereo(t *testing.T) {
	var samples bytes.Buffer
	for _, s := range []int16{32767, -32768, 0, 16384} {
		_ = binary.Write(&samples, binary.LittleEndian, s)
	}
	data := rawWAV(22050, 2, 16, 1, samples.Bytes())

	buf, err := WAVDecoder{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 22050, buf.SampleRate)
	require.Equal(t, 2, buf.NumChannels())
	require.Equal(t, 2, buf.Len())
	assert.InDeltaSlice(t, []float64{1, 0}, buf.Channels[0], 1e-12)
	assert.InDeltaSlice(t, []float64{-1, 16384.0 / 32767}, buf.Channels[1], 1e-12)
}

func TestWAVDecoder_24Bit(t *testing.T) {
	// 0x7FFFFF, 0x800000, 0x000000
	samples := []byte{
		0xFF, 0xFF, 0x7F,
		0x00, 0x00, 0x80,
		0x00, 0x00, 0x00,
	}
	data := rawWAV(48000, 1, 24, 1, samples)

	buf, err := WAVDecoder{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 48000, buf.SampleRate)
	assert.InDeltaSlice(t, []float64{1, -1, 0}, buf.Channels[0], 1e-12)
}

func TestWAVDecoder_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not RIFF", []byte("this is not a wav file at all, just some bytes")},
		{"float format", rawWAV(44100, 1, 32, 3, make([]byte, 8))},
		{"12 bit", rawWAV(44100, 1, 12, 1, make([]byte, 8))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WAVDecoder{}.Decode(tt.data)
			require.ErrorIs(t, err, ErrDecodeFailure)
		})
	}
}

// extensibleWAV builds a WAVE_FORMAT_EXTENSIBLE file whose sub-format GUID
// starts with subFormat.
func extensibleWAV(sampleRate, channels, bits, subFormat int, samples []byte) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	blockAlign := channels * bits / 8

	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(4+8+40+8+len(samples)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, le, uint32(40))
	_ = binary.Write(&b, le, uint16(wavFormatExtensible))
	_ = binary.Write(&b, le, uint16(channels))
	_ = binary.Write(&b, le, uint32(sampleRate))
	_ = binary.Write(&b, le, uint32(sampleRate*blockAlign))
	_ = binary.Write(&b, le, uint16(blockAlign))
	_ = binary.Write(&b, le, uint16(bits))
	_ = binary.Write(&b, le, uint16(22))   // cbSize
	_ = binary.Write(&b, le, uint16(bits)) // valid bits
	_ = binary.Write(&b, le, uint32(0))    // channel mask
	_ = binary.Write(&b, le, uint16(subFormat))
	b.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(len(samples)))
	b.Write(samples)
	return b.Bytes()
}

func TestWAVDecoder_ExtensiblePCM(t *testing.T) {
	var samples bytes.Buffer
	for _, s := range []int16{-32768, 0, 32767} {
		_ = binary.Write(&samples, binary.LittleEndian, s)
	}
	data := extensibleWAV(48000, 1, 16, wavFormatPCM, samples.Bytes())

	buf, err := WAVDecoder{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 48000, buf.SampleRate)
	require.Equal(t, 1, buf.NumChannels())
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, buf.Channels[0], 1e-12)
}

func TestWAVDecoder_ExtensibleFloatRejected(t *testing.T) {
	var samples bytes.Buffer
	for _, s := range []float32{0.5, -0.25} {
		_ = binary.Write(&samples, binary.LittleEndian, s)
	}
	const ieeeFloat = 3
	data := extensibleWAV(48000, 1, 32, ieeeFloat, samples.Bytes())

	_, err := WAVDecoder{}.Decode(data)
	require.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "sub-format 3")
}

func TestWAVSubFormat(t *testing.T) {
	plain := rawWAV(8000, 1, 16, wavFormatPCM, []byte{0, 0})
	sub, err := wavSubFormat(bytes.NewReader(plain))
	require.NoError(t, err)
	assert.Equal(t, uint16(wavFormatPCM), sub)

	ext := extensibleWAV(8000, 1, 32, 3, []byte{0, 0, 0, 0})
	sub, err = wavSubFormat(bytes.NewReader(ext))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), sub)

	// A LIST chunk ahead of fmt is skipped.
	var withList bytes.Buffer
	withList.Write(plain[:12])
	withList.WriteString("LIST")
	_ = binary.Write(&withList, binary.LittleEndian, uint32(4))
	withList.WriteString("INFO")
	withList.Write(plain[12:])
	sub, err = wavSubFormat(bytes.NewReader(withList.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint16(wavFormatPCM), sub)

	_, err = wavSubFormat(bytes.NewReader(plain[:12]))
	assert.Error(t, err)
}
