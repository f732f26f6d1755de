package mixmaster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV_Header(t *testing.T) {
	buf, err := NewSilentBuffer(44100, 2, 10)
	require.NoError(t, err)

	data := EncodeWAV(buf)
	require.Len(t, data, 84)

	le := binary.LittleEndian
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(76), le.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint32(16), le.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), le.Uint16(data[20:22]))
	assert.Equal(t, uint16(2), le.Uint16(data[22:24]))
	assert.Equal(t, uint32(44100), le.Uint32(data[24:28]))
	assert.Equal(t, uint32(176400), le.Uint32(data[28:32]))
	assert.Equal(t, uint16(4), le.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), le.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(40), le.Uint32(data[40:44]))
	assert.Equal(t, make([]byte, 40), data[44:])
}

func TestEncodeWAV_SampleConversion(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int16
	}{
		{"full positive", 1, 32767},
		{"full negative", -1, -32768},
		{"clamped positive", 1.5, 32767},
		{"clamped negative", -1.5, -32768},
		{"positive infinity", math.Inf(1), 32767},
		{"negative infinity", math.Inf(-1), -32768},
		{"zero", 0, 0},
		{"negative zero", math.Copysign(0, -1), 0},
		{"half", 0.5, 16383},
		{"negative half", -0.5, -16384},
		{"truncates toward zero", 0.99999, 32766},
		{"tiny negative", -1e-9, 0},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pcm16(tt.in))

			buf, err := NewBuffer(8000, [][]float64{{tt.in}})
			require.NoError(t, err)
			data := EncodeWAV(buf)
			require.Len(t, data, wavHeaderSize+2)
			assert.Equal(t, tt.want, int16(binary.LittleEndian.Uint16(data[44:])))
		})
	}
}

func TestEncodeWAV_Interleaving(t *testing.T) {
	buf, err := NewBuffer(8000, [][]float64{
		{1, 0.5, -1},
		{-1, 0, 1},
	})
	require.NoError(t, err)

	data := EncodeWAV(buf)
	require.Len(t, data, wavHeaderSize+12)

	want := []int16{32767, -32768, 16383, 0, -32768, 32767}
	got := make([]int16, len(want))
	for i := range got {
		got[i] = int16(binary.LittleEndian.Uint16(data[wavHeaderSize+2*i:]))
	}
	assert.Equal(t, want, got)
}

func TestEncodeWAV_HeaderOnly(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
	}{
		{"nil buffer", nil},
		{"no channels", &Buffer{SampleRate: 44100}},
		{"no frames", &Buffer{SampleRate: 44100, Channels: [][]float64{{}, {}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := EncodeWAV(tt.buf)
			require.Len(t, data, wavHeaderSize)
			assert.Equal(t, uint32(wavRIFFOverhead), binary.LittleEndian.Uint32(data[4:8]))
			assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[40:44]))
		})
	}
}

func TestEncodeWAV_LargerThanOneBlock(t *testing.T) {
	input := noiseBuffer(t, 3, encodeBlockFrames*2+17, 0.8)

	data := EncodeWAV(input)
	require.Len(t, data, wavHeaderSize+input.Len()*3*2)

	// Last frame, last channel.
	last := int16(binary.LittleEndian.Uint16(data[len(data)-2:]))
	assert.Equal(t, pcm16(input.Channels[2][input.Len()-1]), last)
}

func TestEncodeWAV_ReadableByWAVDecoder(t *testing.T) {
	input := noiseBuffer(t, 2, 1500, 0.9)

	dec := wav.NewDecoder(bytes.NewReader(EncodeWAV(input)))
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(testRate), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)

	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, pcm.Data, 3000)
	for i, s := range pcm.Data {
		want := pcm16(input.Channels[i%2][i/2])
		require.Equal(t, int(want), s, "sample %d", i)
	}
}

func TestEncodeWAV_RoundTrip(t *testing.T) {
	input := noiseBuffer(t, 2, 2000, 1)

	out, err := WAVDecoder{}.Decode(EncodeWAV(input))
	require.NoError(t, err)
	assert.Equal(t, input.SampleRate, out.SampleRate)
	require.Equal(t, input.NumChannels(), out.NumChannels())
	require.Equal(t, input.Len(), out.Len())
	for ch := range input.Channels {
		for i := range input.Channels[ch] {
			require.InDelta(t, input.Channels[ch][i], out.Channels[ch][i], 1.0/32767, "ch %d sample %d", ch, i)
		}
	}
}

type failingWriter struct {
	after int
	n     int
}

var errWriteFailed = errors.New("write failed")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.after {
		return 0, errWriteFailed
	}
	w.n += len(p)
	return len(p), nil
}

func TestWriteWAV_PropagatesWriteError(t *testing.T) {
	input := noiseBuffer(t, 2, encodeBlockFrames*4, 0.5)

	err := WriteWAV(&failingWriter{after: 1000}, input)
	require.ErrorIs(t, err, errWriteFailed)
}

func TestWriteWAV_MatchesEncodeWAV(t *testing.T) {
	input := noiseBuffer(t, 2, 5000, 0.5)

	var out bytes.Buffer
	require.NoError(t, WriteWAV(&out, input))
	assert.Equal(t, EncodeWAV(input), out.Bytes())
}

func TestCheckWAVSize(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		channels int
		wantErr  bool
	}{
		{"empty", 0, 2, false},
		{"one hour stereo", 44100 * 3600, 2, false},
		{"largest mono", (math.MaxUint32 - wavRIFFOverhead) / wavBytesPerSample, 1, false},
		{"one frame over", (math.MaxUint32-wavRIFFOverhead)/wavBytesPerSample + 1, 1, true},
		{"4 GiB mono", 1 << 31, 1, true},
		{"wraps uint32", 1 << 30, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkWAVSize(tt.frames, tt.channels)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWAVTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
