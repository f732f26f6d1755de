package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mixmaster "github.com/tphakala/go-audio-mixmaster"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func writeTone(t *testing.T, dir string, rate, frames int) string {
	t.Helper()
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
		right[i] = 0.25 * math.Sin(2*math.Pi*3000*float64(i)/float64(rate))
	}
	buf, err := mixmaster.NewBuffer(rate, [][]float64{left, right})
	require.NoError(t, err)

	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, mixmaster.EncodeWAV(buf), 0o600))
	return path
}

func readWAV(t *testing.T, path string) *mixmaster.Buffer {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	buf, err := mixmaster.WAVDecoder{}.Decode(data)
	require.NoError(t, err)
	return buf
}

func TestChainFlags_Params(t *testing.T) {
	p, err := ChainFlags{Gain: 1.5, LowEQ: -3, MidEQ: 2, HighEQ: 12}.params()
	require.NoError(t, err)
	assert.Equal(t, mixmaster.Params{Gain: 1.5, LowEQ: -3, MidEQ: 2, HighEQ: 12}, p)

	_, err = ChainFlags{Gain: 1, MidEQ: 20}.params()
	require.ErrorIs(t, err, mixmaster.ErrInvalidParameter)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, 44100, 4410)
	out := filepath.Join(dir, "out.wav")
	params := mixmaster.Params{Gain: 0.8, LowEQ: 3, MidEQ: -2, HighEQ: 4}

	stats, err := renderFile(in, out, params, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 44100, stats.inputRate)
	assert.Equal(t, 44100, stats.outputRate)
	assert.Equal(t, 2, stats.channels)
	assert.Equal(t, 4410, stats.frames)
	assert.Less(t, stats.level.PeakDB, 0.0)

	want, err := mixmaster.RenderOffline(readWAV(t, in), params)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, mixmaster.EncodeWAV(want), got)
}

func TestRenderFile_ConvertsRate(t *testing.T) {
	dir := t.TempDir()
	in := writeTone(t, dir, 44100, 44100)
	out := filepath.Join(dir, "out.wav")

	stats, err := renderFile(in, out, mixmaster.DefaultParams(), 48000, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 48000, stats.outputRate)
	assert.Equal(t, 48000, stats.frames)

	buf := readWAV(t, out)
	assert.Equal(t, 48000, buf.SampleRate)
	assert.Equal(t, 48000, buf.Len())
}

func TestRenderFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := renderFile(filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.wav"), mixmaster.DefaultParams(), 0, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")

	junk := filepath.Join(dir, "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("not a wav file"), 0o600))
	_, err = renderFile(junk, filepath.Join(dir, "out.wav"), mixmaster.DefaultParams(), 0, zap.NewNop())
	require.ErrorIs(t, err, mixmaster.ErrDecodeFailure)
}

func TestChainResponse(t *testing.T) {
	bands, err := chainResponse(mixmaster.DefaultParams(), 44100)
	require.NoError(t, err)
	require.NotEmpty(t, bands)
	for _, b := range bands {
		assert.InDelta(t, 0, b.GainDB, 0.01, "%.1f Hz", b.Frequency)
	}

	bands, err = chainResponse(mixmaster.Params{Gain: 1, LowEQ: 12}, 44100)
	require.NoError(t, err)
	assert.InDelta(t, 12, bands[0].GainDB, 0.5, "lowest band")

	var out bytes.Buffer
	printResponse(&out, mixmaster.DefaultParams(), bands)
	assert.Contains(t, out.String(), "Chain response")
	assert.Contains(t, out.String(), "1000.0 Hz")
}

// nullDevice accepts the render callback and never pulls.
type nullDevice struct {
	mu     sync.Mutex
	opened int
}

func (d *nullDevice) Open(int, int, func([][]float64)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened++
	return nil
}

func (d *nullDevice) Close() error { return nil }

func newTestSession(t *testing.T) (*session, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	m := mixmaster.NewMonitor(&nullDevice{})
	t.Cleanup(func() { _ = m.Close() })

	in := writeTone(t, dir, 44100, 1000)
	require.NoError(t, m.Load(context.Background(), in))

	var out bytes.Buffer
	return &session{
		monitor:  m,
		exporter: &mixmaster.Exporter{Gate: mixmaster.AdminOverride{}, Saver: mixmaster.DirSaver{Dir: dir}},
		out:      &out,
	}, &out, dir
}

func TestSession_Execute(t *testing.T) {
	s, out, dir := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.execute(ctx, "play"))
	assert.Equal(t, mixmaster.StatePlaying, s.monitor.State())
	require.NoError(t, s.execute(ctx, "  STOP "))
	assert.Equal(t, mixmaster.StateLoaded, s.monitor.State())

	require.NoError(t, s.execute(ctx, "gain 1.25"))
	require.NoError(t, s.execute(ctx, "low -3"))
	require.NoError(t, s.execute(ctx, "mid 2.5"))
	require.NoError(t, s.execute(ctx, "high 6"))
	assert.Equal(t, mixmaster.Params{Gain: 1.25, LowEQ: -3, MidEQ: 2.5, HighEQ: 6}, s.monitor.Params())

	require.ErrorIs(t, s.execute(ctx, "gain 3"), mixmaster.ErrInvalidParameter)
	require.Error(t, s.execute(ctx, "gain"))
	require.Error(t, s.execute(ctx, "low loud"))
	require.Error(t, s.execute(ctx, "dance"))
	require.NoError(t, s.execute(ctx, ""))

	require.NoError(t, s.execute(ctx, "params"))
	assert.Contains(t, out.String(), "gain=1.25")

	require.NoError(t, s.execute(ctx, "export My Song"))
	assert.Contains(t, out.String(), "saved My Song_mixed.wav")
	_, err := os.Stat(filepath.Join(dir, "My Song_mixed.wav"))
	require.NoError(t, err)
	require.Error(t, s.execute(ctx, "export"))

	require.ErrorIs(t, s.execute(ctx, "quit"), errQuit)
}

func TestSession_Run(t *testing.T) {
	s, out, _ := newTestSession(t)

	input := strings.NewReader("play\nbogus\nmid 3\nstop\nquit\nplay\n")
	require.NoError(t, s.run(context.Background(), input))

	assert.Equal(t, mixmaster.StateLoaded, s.monitor.State())
	assert.InDelta(t, 3.0, s.monitor.Params().MidEQ, 0)
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestSession_RunStopsAtEOF(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.run(context.Background(), strings.NewReader("play\n")))
	assert.Equal(t, mixmaster.StatePlaying, s.monitor.State())
}
