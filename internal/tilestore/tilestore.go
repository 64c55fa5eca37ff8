// Package tilestore fetches raw imagery tiles by geographic coordinates
// and caches them locally, so repeated analysis of the same tile never
// re-downloads it.
package tilestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultBaseURL is the THEMIS day-IR 100 m/px global mosaic directory.
const DefaultBaseURL = "https://www.mars.asu.edu/data/thm_dir_100m/large/"

// Store fetches and caches tiles. The cache is keyed by tile filename;
// Fetch is idempotent and returns the cached copy without re-fetching.
type Store struct {
	BaseURL  string
	CacheDir string

	client *http.Client
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBaseURL overrides the tile server base URL.
func WithBaseURL(url string) Option {
	return func(s *Store) { s.BaseURL = url }
}

// WithCacheDir overrides the local cache directory.
func WithCacheDir(dir string) Option {
	return func(s *Store) { s.CacheDir = dir }
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store. Defaults: THEMIS base URL, an XDG cache directory,
// http.DefaultClient, slog.Default().
func New(opts ...Option) *Store {
	s := &Store{
		BaseURL:  DefaultBaseURL,
		CacheDir: filepath.Join(xdg.CacheHome, "crater-survey", "tiles"),
		client:   http.DefaultClient,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TileName returns the canonical tile filename for a latitude band and
// longitude.
func TileName(lat, lon int) string {
	return fmt.Sprintf("lat%d_lon%03d.pgm", lat, lon)
}

// Fetch returns the local path of the tile for the given coordinates,
// downloading it first if it is not already cached. Repeated calls for the
// same coordinates return the same bytes without re-fetching.
func (s *Store) Fetch(ctx context.Context, lat, lon int) (string, error) {
	name := TileName(lat, lon)
	local := filepath.Join(s.CacheDir, name)

	if _, err := os.Stat(local); err == nil {
		s.logger.Debug("tile cache hit", "tile", name)
		return local, nil
	}

	if err := os.MkdirAll(s.CacheDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	url := s.BaseURL + name
	s.logger.Info("downloading tile", "tile", name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download tile %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download tile %s: status %s", name, resp.Status)
	}

	// Download to a temp file and rename, so a partial download never
	// poisons the cache.
	tmp, err := os.CreateTemp(s.CacheDir, name+".part-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write tile %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store tile %s: %w", name, err)
	}

	s.logger.Info("downloaded tile", "tile", name, "bytes", n)
	return local, nil
}
