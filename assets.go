package mixmaster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// AssetSource resolves an opaque asset reference to its encoded bytes.
type AssetSource interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ErrAssetNotFound is returned when a reference resolves to nothing.
var ErrAssetNotFound = errors.New("asset not found")

// URLSource fetches http and https URLs and reads file URLs. Any other
// reference is treated as a local path.
type URLSource struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Open starts the fetch and returns the body for the caller to close.
func (s URLSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse asset url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return s.fetch(ctx, ref)
	case "file":
		return openFile(u.Path)
	case "":
		return openFile(ref)
	default:
		return nil, fmt.Errorf("unsupported asset scheme %q", u.Scheme)
	}
}

func (s URLSource) fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("create asset request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, ref)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch asset: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// DirSource serves references as paths relative to Root. References that
// would escape Root are rejected.
type DirSource struct {
	Root string
}

// Open opens Root/ref.
func (s DirSource) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if !filepath.IsLocal(ref) {
		return nil, fmt.Errorf("%w: %q is outside the asset root", ErrAssetNotFound, ref)
	}
	return openFile(filepath.Join(s.Root, ref))
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
