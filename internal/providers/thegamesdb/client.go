// Package thegamesdb adapts the TheGamesDB API to the provider contract:
// boxart and screenshots, keyed by the legacy apikey query parameter.
package thegamesdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gridsmith/internal/artcache"
	"gridsmith/internal/logging"
	"gridsmith/internal/match"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

// ProviderID identifies this source in logs and source tags.
const ProviderID = "thegamesdb"

// GameEntry is one row from a ByGameName search.
type GameEntry struct {
	ID          int64  `json:"id"`
	GameTitle   string `json:"game_title"`
	ReleaseDate string `json:"release_date"`
}

// ImageEntry is one row from an Images response.
type ImageEntry struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

type searchResponse struct {
	Data struct {
		Games []GameEntry `json:"games"`
	} `json:"data"`
}

type imagesResponse struct {
	Data struct {
		BaseURL struct {
			Original string `json:"original"`
		} `json:"base_url"`
		Images map[string][]ImageEntry `json:"images"`
	} `json:"data"`
}

// Client talks to the TheGamesDB API.
type Client struct {
	apiKey          string
	baseURL         string
	preferImageType string
	platformMap     map[string]int
	httpClient      *http.Client
	cache           *artcache.Cache
	logger          *slog.Logger
}

var (
	_ providers.Provider          = (*Client)(nil)
	_ providers.ScreenshotFetcher = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TheGamesDB client. platformMap maps platform keys to
// numeric platform ids; preferImageType is the first image type tried when
// picking artwork (typically "boxart").
func New(apiKey, baseURL, preferImageType string, platformMap map[string]int, cache *artcache.Cache, logger *slog.Logger, opts ...Option) *Client {
	if preferImageType == "" {
		preferImageType = "boxart"
	}
	c := &Client{
		apiKey:          strings.TrimSpace(apiKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		preferImageType: preferImageType,
		platformMap:     platformMap,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		cache:           cache,
		logger:          logging.NewComponentLogger(logger, ProviderID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID implements providers.Provider.
func (c *Client) ID() string { return ProviderID }

// Available implements providers.Provider.
func (c *Client) Available(platform string) bool {
	if c.apiKey == "" {
		return false
	}
	_, ok := c.platformMap[platform]
	return ok
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("thegamesdb returned %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) searchGames(ctx context.Context, title titles.Title, platform string) ([]GameEntry, error) {
	params := url.Values{}
	params.Set("name", title.Normalized)
	params.Set("filter[platform]", strconv.Itoa(c.platformMap[platform]))

	var payload searchResponse
	if err := c.get(ctx, "Games/ByGameName", params, &payload); err != nil {
		return nil, err
	}
	return payload.Data.Games, nil
}

// Search implements providers.Provider.
func (c *Client) Search(ctx context.Context, title titles.Title, platform string) ([]match.Candidate, error) {
	games, err := c.searchGames(ctx, title, platform)
	if err != nil {
		return nil, err
	}

	candidates := make([]match.Candidate, 0, len(games))
	for _, g := range games {
		meta := match.Metadata{}
		if g.ReleaseDate != "" {
			meta["release_date"] = g.ReleaseDate
		}
		candidates = append(candidates, match.Candidate{
			ProviderID: ProviderID,
			ExternalID: strconv.FormatInt(g.ID, 10),
			Name:       g.GameTitle,
			Meta:       meta,
			Score:      match.Score(title, g.GameTitle, meta, nil),
		})
	}
	return candidates, nil
}

// imagesForGame returns the CDN base URL and the image rows for one game.
func (c *Client) imagesForGame(ctx context.Context, gameID int64, imageType string) (string, []ImageEntry, error) {
	params := url.Values{}
	params.Set("games_id", strconv.FormatInt(gameID, 10))
	if imageType != "" {
		params.Set("filter[type]", imageType)
	}

	var payload imagesResponse
	if err := c.get(ctx, "Games/Images", params, &payload); err != nil {
		return "", nil, err
	}
	return payload.Data.BaseURL.Original, payload.Data.Images[strconv.FormatInt(gameID, 10)], nil
}

func (c *Client) bestGame(ctx context.Context, title titles.Title, platform string) (GameEntry, bool, error) {
	games, err := c.searchGames(ctx, title, platform)
	if err != nil {
		return GameEntry{}, false, err
	}
	if len(games) == 0 {
		return GameEntry{}, false, nil
	}

	bestIdx := 0
	bestScore := -1 << 30
	for i, g := range games {
		meta := match.Metadata{}
		if g.ReleaseDate != "" {
			meta["release_date"] = g.ReleaseDate
		}
		if s := match.Score(title, g.GameTitle, meta, nil); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return games[bestIdx], true, nil
}

// FetchBest implements providers.Provider: the preferred image type for the
// best-matching game, falling back to any boxart, then the first image.
func (c *Client) FetchBest(ctx context.Context, title titles.Title, platform string, _ providers.StylePrefs) (*providers.Option, error) {
	game, ok, err := c.bestGame(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, providers.ErrNoArtwork
	}

	baseURL, images, err := c.imagesForGame(ctx, game.ID, "")
	if err != nil {
		return nil, err
	}
	if baseURL == "" || len(images) == 0 {
		return nil, providers.ErrNoArtwork
	}

	best := pickImage(images, c.preferImageType)
	if best == nil {
		return nil, providers.ErrNoArtwork
	}

	data, err := c.cache.Fetch(ctx, baseURL+best.Filename)
	if err != nil {
		return nil, err
	}
	return &providers.Option{
		Bytes:      data,
		SourceTag:  "thegamesdb_" + best.Type,
		ProviderID: ProviderID,
	}, nil
}

// FetchAll implements providers.Provider.
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

// FetchScreenshots implements providers.ScreenshotFetcher.
func (c *Client) FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) ([]providers.Option, error) {
	game, ok, err := c.bestGame(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	baseURL, images, err := c.imagesForGame(ctx, game.ID, "screenshot")
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, nil
	}

	var options []providers.Option
	for _, img := range images {
		if img.Type != "screenshot" || img.Filename == "" {
			continue
		}
		data, err := c.cache.Fetch(ctx, baseURL+img.Filename)
		if err != nil {
			c.logger.Debug("screenshot download failed",
				logging.String("filename", img.Filename),
				logging.Error(err))
			continue
		}
		options = append(options, providers.Option{
			Bytes:      data,
			SourceTag:  "thegamesdb_screenshot",
			ProviderID: ProviderID,
		})
		if maxResults > 0 && len(options) >= maxResults {
			break
		}
	}
	return options, nil
}

// pickImage prefers the requested type, then any boxart, then the first row.
func pickImage(images []ImageEntry, preferType string) *ImageEntry {
	for i := range images {
		if images[i].Type == preferType && images[i].Filename != "" {
			return &images[i]
		}
	}
	for i := range images {
		if images[i].Type == "boxart" && images[i].Filename != "" {
			return &images[i]
		}
	}
	for i := range images {
		if images[i].Filename != "" {
			return &images[i]
		}
	}
	return nil
}
