package mixmaster

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingSaver keeps everything it is asked to save.
type recordingSaver struct {
	mu     sync.Mutex
	saved  map[string][]byte
	err    error
	closed chan struct{}
}

func newRecordingSaver() *recordingSaver {
	return &recordingSaver{saved: map[string][]byte{}, closed: make(chan struct{}, 8)}
}

func (s *recordingSaver) Save(name string, data []byte) (io.Closer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = append([]byte(nil), data...)
	return closerFunc(func() error {
		s.closed <- struct{}{}
		return nil
	}), nil
}

func (s *recordingSaver) files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.saved))
	for k, v := range s.saved {
		out[k] = v
	}
	return out
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestSaveAs_ReleasesAfterDelay(t *testing.T) {
	saver := newRecordingSaver()
	start := time.Now()

	require.NoError(t, SaveAs(saver, []byte("abc"), "song_mixed.wav"))
	assert.Equal(t, []byte("abc"), saver.files()["song_mixed.wav"])

	select {
	case <-saver.closed:
		assert.GreaterOrEqual(t, time.Since(start), ReleaseDelay)
	case <-time.After(5 * time.Second):
		t.Fatal("handle was never released")
	}
}

func TestSaveAs_Errors(t *testing.T) {
	saver := newRecordingSaver()
	require.ErrorIs(t, SaveAs(saver, []byte("x"), ""), ErrInvalidFilename)
	require.ErrorIs(t, SaveAs(saver, []byte("x"), "   "), ErrInvalidFilename)
	assert.Empty(t, saver.files())

	boom := errors.New("disk full")
	saver.err = boom
	require.ErrorIs(t, SaveAs(saver, []byte("x"), "a.wav"), boom)
}

func TestMixedFilename(t *testing.T) {
	assert.Equal(t, "Demo Track_mixed.wav", MixedFilename("Demo Track"))
	assert.Equal(t, "_mixed.wav", MixedFilename(""))
}

func TestDirSaver(t *testing.T) {
	dir := t.TempDir()
	saver := DirSaver{Dir: dir, Logger: zaptest.NewLogger(t)}

	handle, err := saver.Save("out.wav", []byte("data"))
	require.NoError(t, err)
	require.NoError(t, handle.Close())

	got, err := os.ReadFile(filepath.Join(dir, "out.wav"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestDirSaver_RejectsPaths(t *testing.T) {
	saver := DirSaver{Dir: t.TempDir()}

	for _, name := range []string{"../escape.wav", "sub/dir.wav", ".", ".."} {
		_, err := saver.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}
}

func TestDirSaver_MissingDir(t *testing.T) {
	saver := DirSaver{Dir: filepath.Join(t.TempDir(), "missing")}

	_, err := saver.Save("out.wav", []byte("x"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
