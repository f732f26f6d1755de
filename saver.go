package mixmaster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Saver is the platform "save bytes as a file" primitive. The returned
// handle stays open until SaveAs releases it.
type Saver interface {
	Save(name string, data []byte) (io.Closer, error)
}

// ErrInvalidFilename is returned for names a Saver refuses.
var ErrInvalidFilename = errors.New("invalid filename")

// SaveAs hands data to saver under filename and releases the returned handle
// after ReleaseDelay, giving the save time to start. Only the Save error is
// returned; releasing is the handle's business.
func SaveAs(saver Saver, data []byte, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFilename)
	}
	handle, err := saver.Save(filename, data)
	if err != nil {
		return fmt.Errorf("save %q: %w", filename, err)
	}
	if handle != nil {
		time.AfterFunc(ReleaseDelay, func() { _ = handle.Close() })
	}
	return nil
}

// MixedFilename names the export of a track: "<title>_mixed.wav".
func MixedFilename(title string) string {
	return title + mixedSuffix
}

// DirSaver writes files into Dir.
type DirSaver struct {
	Dir    string
	Logger *zap.Logger
}

// Save writes data to Dir/name and syncs it. The returned handle keeps the
// file open until closed; close failures are logged.
func (s DirSaver) Save(name string, data []byte) (io.Closer, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sync %s: %w", path, err)
	}

	logger.Info("file saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return &fileHandle{f: f, logger: logger}, nil
}

type fileHandle struct {
	f      *os.File
	logger *zap.Logger
}

func (h *fileHandle) Close() error {
	err := h.f.Close()
	if err != nil {
		h.logger.Warn("release saved file", zap.String("path", h.f.Name()), zap.Error(err))
	}
	return err
}
