// Package steamgriddb adapts the SteamGridDB REST API to the provider
// contract: grid artwork, hero banners, and title logos, authenticated with
// a bearer API key.
package steamgriddb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
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
const ProviderID = "steamgriddb"

// enoughResults stops the variant search early once this many unique games
// have been collected.
const enoughResults = 5

// Game is one autocomplete search match.
type Game struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	ReleaseDate int64    `json:"release_date"`
	Types       []string `json:"types"`
	Verified    bool     `json:"verified"`
}

// Grid is one artwork entry (grid, hero, or logo share the shape).
type Grid struct {
	ID      int64  `json:"id"`
	Score   int    `json:"score"`
	Upvotes int    `json:"upvotes"`
	Style   string `json:"style"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	URL     string `json:"url"`
	Mime    string `json:"mime"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the SteamGridDB API.
type Client struct {
	apiKey     string
	baseURL    string
	hints      map[string][]string
	httpClient *http.Client
	cache      *artcache.Cache
	logger     *slog.Logger
	delay      time.Duration
}

var (
	_ providers.Provider    = (*Client)(nil)
	_ providers.HeroFetcher = (*Client)(nil)
	_ providers.LogoFetcher = (*Client)(nil)
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

// WithRequestDelay sets the pause between consecutive API calls.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// New creates a SteamGridDB client. hints maps platform keys to the score
// hint tokens used during candidate selection. An empty API key yields a
// client that reports itself unavailable.
func New(apiKey, baseURL string, hints map[string][]string, cache *artcache.Cache, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		hints:      hints,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, ProviderID),
		delay:      250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID implements providers.Provider.
func (c *Client) ID() string { return ProviderID }

// Available implements providers.Provider. SteamGridDB is platform
// agnostic; only the credential matters.
func (c *Client) Available(string) bool { return c.apiKey != "" }

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steamgriddb returned %d for %s", resp.StatusCode, path)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("steamgriddb request %s unsuccessful", path)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

func (c *Client) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
	}
}

func (c *Client) autocomplete(ctx context.Context, term string) ([]Game, error) {
	var games []Game
	err := c.get(ctx, "search/autocomplete/"+url.PathEscape(term), nil, &games)
	return games, err
}

// searchVariants runs autocomplete for each search variant, deduplicating
// by game id, and stops early once enough unique results accumulate.
func (c *Client) searchVariants(ctx context.Context, title titles.Title) ([]Game, error) {
	var all []Game
	seen := make(map[int64]bool)
	variants := title.SearchVariants

	for i, variant := range variants {
		if variant == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}
		games, err := c.autocomplete(ctx, variant)
		if err != nil {
			c.logger.Debug("search variant failed",
				logging.String("variant", variant),
				logging.Error(err))
			continue
		}
		for _, g := range games {
			if g.ID == 0 || seen[g.ID] {
				continue
			}
			seen[g.ID] = true
			all = append(all, g)
		}
		if len(all) >= enoughResults {
			break
		}
		if i < len(variants)-1 {
			c.pause(ctx)
		}
	}
	if len(all) == 0 && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return all, nil
}

func (c *Client) gameMeta(ctx context.Context, id int64) match.Metadata {
	var meta match.Metadata
	if err := c.get(ctx, "games/id/"+strconv.FormatInt(id, 10), nil, &meta); err != nil {
		c.logger.Debug("game metadata fetch failed",
			logging.Int64("game_id", id),
			logging.Error(err))
		return nil
	}
	return meta
}

// Search implements providers.Provider. Each candidate carries the full
// metadata payload so year and platform scoring can use it.
func (c *Client) Search(ctx context.Context, title titles.Title, platform string) ([]match.Candidate, error) {
	games, err := c.searchVariants(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(games) > match.DefaultTopCandidates {
		games = games[:match.DefaultTopCandidates]
	}

	candidates := make([]match.Candidate, 0, len(games))
	for _, g := range games {
		meta := c.gameMeta(ctx, g.ID)
		c.pause(ctx)
		name := g.Name
		if name == "" {
			if v, ok := meta["name"].(string); ok {
				name = v
			}
		}
		candidates = append(candidates, match.Candidate{
			ProviderID: ProviderID,
			ExternalID: strconv.FormatInt(g.ID, 10),
			Name:       name,
			Meta:       meta,
			Score:      match.Score(title, name, meta, c.hints[platform]),
		})
	}
	return candidates, nil
}

func (c *Client) bestGameID(ctx context.Context, title titles.Title, platform string) (string, error) {
	candidates, err := c.Search(ctx, title, platform)
	if err != nil {
		return "", err
	}
	best, ok := match.SelectBest(title, candidates, c.hints[platform], match.DefaultTopCandidates)
	if !ok {
		return "", nil
	}
	return best.ExternalID, nil
}

func isAnimated(g Grid) bool {
	return strings.HasPrefix(g.Mime, "image/webp") || strings.HasSuffix(strings.ToLower(g.URL), ".webp")
}

// filterGrids applies style preferences and returns the survivors sorted by
// score, then upvotes, then ascending id as the stable tiebreak.
func filterGrids(grids []Grid, prefs providers.StylePrefs) []Grid {
	var kept []Grid
	for _, g := range grids {
		if strings.TrimSpace(g.URL) == "" {
			continue
		}
		if !prefs.AllowAnimated && isAnimated(g) {
			continue
		}
		if prefs.SquareOnly {
			dim := fmt.Sprintf("%dx%d", g.Width, g.Height)
			if prefs.PreferredDimension != "" && dim != prefs.PreferredDimension {
				continue
			}
			if g.Width != g.Height {
				continue
			}
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if kept[i].Upvotes != kept[j].Upvotes {
			return kept[i].Upvotes > kept[j].Upvotes
		}
		return kept[i].ID < kept[j].ID
	})
	return kept
}

func (c *Client) imagesByGame(ctx context.Context, kind, gameID string, dimensions, styles []string) ([]Grid, error) {
	params := url.Values{}
	if len(dimensions) > 0 {
		params.Set("dimensions", strings.Join(dimensions, ","))
	}
	if len(styles) > 0 {
		params.Set("styles", strings.Join(styles, ","))
	}
	var grids []Grid
	err := c.get(ctx, kind+"/game/"+gameID, params, &grids)
	return grids, err
}

// FetchBest implements providers.Provider.
func (c *Client) FetchBest(ctx context.Context, title titles.Title, platform string, prefs providers.StylePrefs) (*providers.Option, error) {
	gameID, err := c.bestGameID(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, providers.ErrNoArtwork
	}

	var dims []string
	if prefs.PreferredDimension != "" {
		dims = []string{prefs.PreferredDimension}
	}
	grids, err := c.imagesByGame(ctx, "grids", gameID, dims, prefs.Styles)
	if err != nil {
		return nil, err
	}
	kept := filterGrids(grids, prefs)
	if len(kept) == 0 {
		return nil, providers.ErrNoArtwork
	}

	data, err := c.cache.Fetch(ctx, kept[0].URL)
	if err != nil {
		return nil, err
	}
	return &providers.Option{
		Bytes:      data,
		SourceTag:  "steamgriddb_square",
		ProviderID: ProviderID,
	}, nil
}

// FetchAll implements providers.Provider. Source tags carry the grid style
// so the selection UI can label each option.
func (c *Client) FetchAll(ctx context.Context, title titles.Title, platform string, prefs providers.StylePrefs, maxResults int) ([]providers.Option, error) {
	gameID, err := c.bestGameID(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, nil
	}

	var dims []string
	if prefs.PreferredDimension != "" {
		dims = []string{prefs.PreferredDimension}
	}
	grids, err := c.imagesByGame(ctx, "grids", gameID, dims, prefs.Styles)
	if err != nil {
		return nil, err
	}
	kept := filterGrids(grids, prefs)
	if maxResults > 0 && len(kept) > maxResults {
		kept = kept[:maxResults]
	}

	var options []providers.Option
	for _, g := range kept {
		data, err := c.cache.Fetch(ctx, g.URL)
		if err != nil {
			c.logger.Debug("grid download failed",
				logging.String("url", g.URL),
				logging.Error(err))
			continue
		}
		style := g.Style
		if style == "" {
			style = "unknown"
		}
		options = append(options, providers.Option{
			Bytes:      data,
			SourceTag:  "steamgriddb_" + style,
			ProviderID: ProviderID,
		})
	}
	return options, nil
}

// FetchHeroes implements providers.HeroFetcher.
func (c *Client) FetchHeroes(ctx context.Context, title titles.Title, platform string, maxResults int) ([]providers.Option, error) {
	gameID, err := c.bestGameID(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, nil
	}

	grids, err := c.imagesByGame(ctx, "heroes", gameID, nil, nil)
	if err != nil {
		return nil, err
	}
	kept := filterGrids(grids, providers.StylePrefs{AllowAnimated: false})
	if maxResults > 0 && len(kept) > maxResults {
		kept = kept[:maxResults]
	}

	var options []providers.Option
	for _, g := range kept {
		data, err := c.cache.Fetch(ctx, g.URL)
		if err != nil {
			continue
		}
		options = append(options, providers.Option{
			Bytes:      data,
			SourceTag:  "steamgriddb_hero",
			ProviderID: ProviderID,
		})
	}
	return options, nil
}

// FetchLogo implements providers.LogoFetcher. The first style in styles is
// the most preferred; the API already filters to the requested set.
func (c *Client) FetchLogo(ctx context.Context, title titles.Title, platform string, styles []string) (*providers.Option, error) {
	gameID, err := c.bestGameID(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, nil
	}

	logos, err := c.imagesByGame(ctx, "logos", gameID, nil, styles)
	if err != nil {
		return nil, err
	}
	kept := filterGrids(logos, providers.StylePrefs{AllowAnimated: false})
	if len(kept) == 0 {
		return nil, nil
	}

	data, err := c.cache.Fetch(ctx, kept[0].URL)
	if err != nil {
		return nil, err
	}
	return &providers.Option{
		Bytes:      data,
		SourceTag:  "steamgriddb_logo",
		ProviderID: ProviderID,
	}, nil
}
