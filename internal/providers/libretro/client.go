// Package libretro adapts the libretro-thumbnails file server to the
// provider contract. There is no search API: artwork is addressed by exact
// filename, so the client tries generated candidate names first and falls
// back to fuzzy matching against the platform's directory index.
package libretro

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"gridsmith/internal/artcache"
	"gridsmith/internal/logging"
	"gridsmith/internal/match"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

// ProviderID identifies this source in logs and source tags.
const ProviderID = "libretro"

const (
	boxartDir = "Named_Boxarts"
	snapsDir  = "Named_Snaps"

	// indexMatchThreshold rejects fuzzy index matches below this score.
	indexMatchThreshold = 220
)

// hrefPattern extracts .png links from the Apache-style directory listing.
var hrefPattern = regexp.MustCompile(`(?i)href="([^"]+\.png)"`)

// Client serves thumbnails from a libretro-style static file tree.
type Client struct {
	baseURL     string
	playlistMap map[string]string
	cache       *artcache.Cache
	logger      *slog.Logger
	useIndex    bool
}

var (
	_ providers.Provider          = (*Client)(nil)
	_ providers.ScreenshotFetcher = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithoutIndexMatching disables the directory-index fuzzy fallback.
func WithoutIndexMatching() Option {
	return func(c *Client) {
		c.useIndex = false
	}
}

// New creates a libretro thumbnails client. playlistMap maps platform keys
// to playlist directory names (e.g. "Nintendo - Super Nintendo
// Entertainment System").
func New(baseURL string, playlistMap map[string]string, cache *artcache.Cache, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		playlistMap: playlistMap,
		cache:       cache,
		logger:      logging.NewComponentLogger(logger, ProviderID),
		useIndex:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID implements providers.Provider.
func (c *Client) ID() string { return ProviderID }

// Available implements providers.Provider: no credentials needed, only a
// playlist mapping for the platform.
func (c *Client) Available(platform string) bool {
	_, ok := c.playlistMap[platform]
	return ok && c.baseURL != ""
}

func (c *Client) fileURL(playlist, typeDir, filename string) string {
	return c.baseURL + "/" +
		url.PathEscape(playlist) + "/" +
		url.PathEscape(typeDir) + "/" +
		url.PathEscape(filename)
}

func (c *Client) indexURL(playlist, typeDir string) string {
	return c.baseURL + "/" + url.PathEscape(playlist) + "/" + url.PathEscape(typeDir) + "/"
}

// indexFilenames fetches and parses the directory listing for a playlist.
// The listing HTML goes through the artwork cache, so repeat runs skip the
// network until the cache entry ages out.
func (c *Client) indexFilenames(ctx context.Context, playlist, typeDir string) ([]string, error) {
	html, err := c.cache.Fetch(ctx, c.indexURL(playlist, typeDir))
	if err != nil {
		return nil, err
	}

	matches := hrefPattern.FindAllStringSubmatch(string(html), -1)
	var files []string
	for _, m := range matches {
		name, err := url.PathUnescape(m[1])
		if err != nil {
			name = m[1]
		}
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if strings.HasSuffix(strings.ToLower(name), ".png") {
			files = append(files, name)
		}
	}
	return files, nil
}

// bestIndexMatch fuzzy-matches the title against the index and returns the
// winning filename, or false when nothing clears the threshold.
func (c *Client) bestIndexMatch(ctx context.Context, title titles.Title, playlist, typeDir string) (string, bool) {
	files, err := c.indexFilenames(ctx, playlist, typeDir)
	if err != nil {
		c.logger.Debug("index fetch failed",
			logging.String("playlist", playlist),
			logging.Error(err))
		return "", false
	}

	titleNorm := match.NormalizeFilename(title.Cleaned)
	best := ""
	bestScore := -1 << 30
	for _, f := range files {
		if s := match.ScoreFilename(titleNorm, match.NormalizeFilename(f)); s > bestScore {
			bestScore = s
			best = f
		}
	}
	if best == "" || bestScore < indexMatchThreshold {
		c.logger.Debug("no index match",
			logging.String("title", title.Cleaned),
			logging.Int("best_score", bestScore))
		return "", false
	}
	return best, true
}

// download tries a file path under the playlist, returning nil bytes on a
// miss so callers can keep probing.
func (c *Client) download(ctx context.Context, playlist, typeDir, filename string) []byte {
	data, err := c.cache.Fetch(ctx, c.fileURL(playlist, typeDir, filename))
	if err != nil {
		return nil
	}
	return data
}

// fetchFile resolves one file: direct candidate names first, then the
// index fallback.
func (c *Client) fetchFile(ctx context.Context, title titles.Title, playlist, typeDir string) []byte {
	for _, cand := range candidateNames(title) {
		if ctx.Err() != nil {
			return nil
		}
		if data := c.download(ctx, playlist, typeDir, cand+".png"); len(data) > 0 {
			return data
		}
	}
	if !c.useIndex {
		return nil
	}
	filename, ok := c.bestIndexMatch(ctx, title, playlist, typeDir)
	if !ok {
		return nil
	}
	return c.download(ctx, playlist, typeDir, filename)
}

// Search implements providers.Provider by scoring the title against the
// boxart index. Scores follow the filename scale, not the metadata scale,
// so they only order candidates within this provider.
func (c *Client) Search(ctx context.Context, title titles.Title, platform string) ([]match.Candidate, error) {
	playlist := c.playlistMap[platform]
	files, err := c.indexFilenames(ctx, playlist, boxartDir)
	if err != nil {
		return nil, err
	}

	titleNorm := match.NormalizeFilename(title.Cleaned)
	candidates := make([]match.Candidate, 0, len(files))
	for _, f := range files {
		s := match.ScoreFilename(titleNorm, match.NormalizeFilename(f))
		if s < indexMatchThreshold {
			continue
		}
		candidates = append(candidates, match.Candidate{
			ProviderID: ProviderID,
			ExternalID: f,
			Name:       strings.TrimSuffix(f, ".png"),
			Score:      s,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > match.DefaultTopCandidates {
		candidates = candidates[:match.DefaultTopCandidates]
	}
	return candidates, nil
}

// FetchBest implements providers.Provider.
func (c *Client) FetchBest(ctx context.Context, title titles.Title, platform string, _ providers.StylePrefs) (*providers.Option, error) {
	playlist := c.playlistMap[platform]
	start := time.Now()
	data := c.fetchFile(ctx, title, playlist, boxartDir)
	if len(data) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, providers.ErrNoArtwork
	}
	c.logger.Debug("boxart resolved",
		logging.String("title", title.Cleaned),
		logging.Duration("elapsed", time.Since(start)))
	return &providers.Option{
		Bytes:      data,
		SourceTag:  "libretro_boxart",
		ProviderID: ProviderID,
	}, nil
}

// FetchAll implements providers.Provider. The thumbnail tree holds one
// boxart per game.
func (c *Client) FetchAll(ctx context.Context, title titles.Title, platform string, prefs providers.StylePrefs, maxResults int) ([]providers.Option, error) {
	if maxResults == 0 {
		return nil, nil
	}
	opt, err := c.FetchBest(ctx, title, platform, prefs)
	if err != nil {
		if err == providers.ErrNoArtwork {
			return nil, nil
		}
		return nil, err
	}
	return []providers.Option{*opt}, nil
}

// FetchScreenshots implements providers.ScreenshotFetcher from the
// Named_Snaps tree. One snap per game; direct names only, the snap index
// rarely helps.
func (c *Client) FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) ([]providers.Option, error) {
	if maxResults == 0 {
		return nil, nil
	}
	playlist := c.playlistMap[platform]
	for _, cand := range candidateNames(title) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data := c.download(ctx, playlist, snapsDir, cand+".png")
		if len(data) == 0 {
			continue
		}
		return []providers.Option{{
			Bytes:      data,
			SourceTag:  "libretro_snap",
			ProviderID: ProviderID,
		}}, nil
	}
	return nil, nil
}
