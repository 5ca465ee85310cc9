// Package igdb adapts the IGDB API to the provider contract. Queries use
// the Apicalypse body syntax over POST; authentication is a Twitch
// client-credentials token cached until shortly before expiry.
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gridsmith/internal/artcache"
	"gridsmith/internal/logging"
	"gridsmith/internal/match"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

// ProviderID identifies this source in logs and source tags.
const ProviderID = "igdb"

const (
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	imageURLFormat  = "https://images.igdb.com/igdb/image/upload/t_%s/%s.jpg"
)

// GameResult is one game row from an Apicalypse query.
type GameResult struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	FirstReleaseDate int64      `json:"first_release_date"`
	Cover            *ImageRef  `json:"cover"`
	Screenshots      []ImageRef `json:"screenshots"`
}

// ImageRef carries the image id used to build a CDN URL.
type ImageRef struct {
	ImageID string `json:"image_id"`
}

// Client talks to the IGDB API.
type Client struct {
	baseURL     string
	coverSize   string
	platformMap map[string]int
	tokens      *tokenSource
	httpClient  *http.Client
	cache       *artcache.Cache
	logger      *slog.Logger
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
			c.tokens.httpClient = client
		}
	}
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.tokens.tokenURL = u
		}
	}
}

// New creates an IGDB client. platformMap maps platform keys to IGDB
// platform ids; unmapped platforms make the provider unavailable for them.
func New(clientID, clientSecret, baseURL, coverSize string, platformMap map[string]int, cache *artcache.Cache, logger *slog.Logger, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if coverSize == "" {
		coverSize = "cover_big"
	}
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		coverSize:   coverSize,
		platformMap: platformMap,
		tokens: &tokenSource{
			clientID:     strings.TrimSpace(clientID),
			clientSecret: strings.TrimSpace(clientSecret),
			tokenURL:     defaultTokenURL,
			httpClient:   httpClient,
		},
		httpClient: httpClient,
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, ProviderID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID implements providers.Provider.
func (c *Client) ID() string { return ProviderID }

// Available implements providers.Provider: credentials plus a platform
// mapping are both required.
func (c *Client) Available(platform string) bool {
	if c.tokens.clientID == "" || c.tokens.clientSecret == "" {
		return false
	}
	_, ok := c.platformMap[platform]
	return ok
}

// query posts an Apicalypse body to an endpoint and decodes the rows.
func (c *Client) query(ctx context.Context, endpoint, body string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("igdb auth: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Client-ID", c.tokens.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("igdb %s returned %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) searchGames(ctx context.Context, title titles.Title, platform string, fields string, limit int) ([]GameResult, error) {
	platformID := c.platformMap[platform]
	body := fmt.Sprintf(`search "%s"; fields %s; where platforms = (%d); limit %d;`,
		strings.ReplaceAll(title.Normalized, `"`, ""), fields, platformID, limit)

	var games []GameResult
	if err := c.query(ctx, "games", body, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Search implements providers.Provider.
func (c *Client) Search(ctx context.Context, title titles.Title, platform string) ([]match.Candidate, error) {
	games, err := c.searchGames(ctx, title, platform, "name,cover.image_id,first_release_date", 5)
	if err != nil {
		return nil, err
	}

	candidates := make([]match.Candidate, 0, len(games))
	for _, g := range games {
		meta := match.Metadata{}
		if g.FirstReleaseDate > 0 {
			meta["release_date"] = float64(g.FirstReleaseDate)
		}
		candidates = append(candidates, match.Candidate{
			ProviderID: ProviderID,
			ExternalID: fmt.Sprintf("%d", g.ID),
			Name:       g.Name,
			Meta:       meta,
			Score:      match.Score(title, g.Name, meta, nil),
		})
	}
	return candidates, nil
}

// FetchBest implements providers.Provider: the highest-scoring search
// result's cover at the configured CDN size.
func (c *Client) FetchBest(ctx context.Context, title titles.Title, platform string, _ providers.StylePrefs) (*providers.Option, error) {
	games, err := c.searchGames(ctx, title, platform, "name,cover.image_id,first_release_date", 5)
	if err != nil {
		return nil, err
	}
	best, ok := c.bestGame(title, games)
	if !ok || best.Cover == nil || best.Cover.ImageID == "" {
		return nil, providers.ErrNoArtwork
	}

	coverURL := fmt.Sprintf(imageURLFormat, c.coverSize, best.Cover.ImageID)
	data, err := c.cache.Fetch(ctx, coverURL)
	if err != nil {
		return nil, err
	}
	return &providers.Option{
		Bytes:      data,
		SourceTag:  "igdb_cover",
		ProviderID: ProviderID,
	}, nil
}

// FetchAll implements providers.Provider. IGDB serves one cover per game,
// so the interactive list gets at most one option.
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

// FetchScreenshots implements providers.ScreenshotFetcher, returning up to
// maxResults 720p gameplay shots for the best-matching game.
func (c *Client) FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) ([]providers.Option, error) {
	games, err := c.searchGames(ctx, title, platform, "name,screenshots.image_id,first_release_date", 1)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}

	shots := games[0].Screenshots
	if maxResults > 0 && len(shots) > maxResults {
		shots = shots[:maxResults]
	}

	var options []providers.Option
	for _, s := range shots {
		if s.ImageID == "" {
			continue
		}
		shotURL := fmt.Sprintf(imageURLFormat, "720p", s.ImageID)
		data, err := c.cache.Fetch(ctx, shotURL)
		if err != nil {
			c.logger.Debug("screenshot download failed",
				logging.String("url", shotURL),
				logging.Error(err))
			continue
		}
		options = append(options, providers.Option{
			Bytes:      data,
			SourceTag:  "igdb_screenshot",
			ProviderID: ProviderID,
		})
	}
	return options, nil
}

// bestGame scores the returned rows and picks the winner.
func (c *Client) bestGame(title titles.Title, games []GameResult) (GameResult, bool) {
	if len(games) == 0 {
		return GameResult{}, false
	}
	bestIdx := 0
	bestScore := -1 << 30
	for i, g := range games {
		meta := match.Metadata{}
		if g.FirstReleaseDate > 0 {
			meta["release_date"] = float64(g.FirstReleaseDate)
		}
		if s := match.Score(title, g.Name, meta, nil); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return games[bestIdx], true
}
