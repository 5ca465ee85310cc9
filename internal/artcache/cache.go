package artcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gridsmith/internal/logging"
)

// Cache is a content-addressed download cache rooted at one directory.
// Safe for concurrent use: keys are content-addressed and writes are
// whole-file, so concurrent writers of the same URL produce identical bytes.
type Cache struct {
	dir        string
	logger     *slog.Logger
	httpClient *http.Client

	mu       sync.Mutex
	inflight map[string]*inflightDownload
}

type inflightDownload struct {
	done chan struct{}
	data []byte
	err  error
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Open creates the cache directory if needed and prunes entries older than
// maxAge (0 disables pruning). The original tool let this cache grow without
// bound; age-based pruning closes that gap.
func Open(dir string, maxAge time.Duration, logger *slog.Logger, opts ...Option) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Cache{
		dir:        dir,
		logger:     logging.NewComponentLogger(logger, "artcache"),
		httpClient: &http.Client{Timeout: 40 * time.Second},
		inflight:   make(map[string]*inflightDownload),
	}
	for _, opt := range opts {
		opt(c)
	}

	if maxAge > 0 {
		if pruned, err := c.prune(maxAge); err != nil {
			c.logger.Warn("cache prune failed", logging.Error(err))
		} else if pruned > 0 {
			c.logger.Debug("pruned stale cache entries", logging.Int("entries", pruned))
		}
	}
	return c, nil
}

// Key returns the cache key for a source URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".bin")
}

// Lookup returns the cached bytes for a URL, if present.
func (c *Cache) Lookup(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(Key(url)))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Store writes bytes for a URL. Entries are immutable: an existing entry is
// left untouched.
func (c *Cache) Store(url string, data []byte) error {
	path := c.path(Key(url))
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize cache entry: %w", err)
	}
	return nil
}

// Fetch returns the bytes behind a URL, downloading and caching on a miss.
// Concurrent fetches of the same URL share one download.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := c.Lookup(url); ok {
		return data, nil
	}

	c.mu.Lock()
	if entry, ok := c.inflight[url]; ok {
		c.mu.Unlock()
		select {
		case <-entry.done:
			return entry.data, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	entry := &inflightDownload{done: make(chan struct{})}
	c.inflight[url] = entry
	c.mu.Unlock()

	entry.data, entry.err = c.download(ctx, url)
	close(entry.done)

	c.mu.Lock()
	delete(c.inflight, url)
	c.mu.Unlock()

	return entry.data, entry.err
}

func (c *Cache) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	if err := c.Store(url, data); err != nil {
		c.logger.Warn("cache store failed", logging.String("url", url), logging.Error(err))
	}
	return data, nil
}

func (c *Cache) prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, ".bin") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if removeErr := os.Remove(path); removeErr == nil {
				pruned++
			}
		}
		return nil
	})
	return pruned, err
}
