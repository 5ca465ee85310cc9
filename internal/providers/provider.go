// Package providers defines the artwork source contract and the
// orchestrator that queries sources in priority order or in parallel.
// Concrete adapters live in subpackages; each reports itself unavailable
// when its credentials are missing instead of failing a run.
package providers

import (
	"context"
	"errors"

	"gridsmith/internal/match"
	"gridsmith/internal/titles"
)

// ErrNoArtwork reports that every queried source came up empty.
var ErrNoArtwork = errors.New("no artwork found")

// Option is a downloaded artwork ready for selection or compositing.
type Option struct {
	Bytes      []byte
	SourceTag  string // provider plus style, e.g. "steamgriddb_alternate"
	ProviderID string
}

// StylePrefs narrows which images a source should return.
type StylePrefs struct {
	PreferredDimension string // e.g. "512x512"
	Styles             []string
	AllowAnimated      bool
	SquareOnly         bool
}

// Provider is one artwork source. Search surfaces scored candidates for a
// normalized title; the fetch methods resolve the best candidate internally
// and return finished downloads.
type Provider interface {
	ID() string
	// Available reports whether the source can be queried at all
	// (credentials present, platform mapped). Unavailable providers are
	// skipped silently.
	Available(platform string) bool
	Search(ctx context.Context, title titles.Title, platform string) ([]match.Candidate, error)
	// FetchBest returns the single best artwork, or ErrNoArtwork.
	FetchBest(ctx context.Context, title titles.Title, platform string, prefs StylePrefs) (*Option, error)
	// FetchAll returns up to maxResults artworks for interactive selection.
	FetchAll(ctx context.Context, title titles.Title, platform string, prefs StylePrefs, maxResults int) ([]Option, error)
}

// HeroFetcher is implemented by providers that serve wide hero banners.
type HeroFetcher interface {
	FetchHeroes(ctx context.Context, title titles.Title, platform string, maxResults int) ([]Option, error)
}

// LogoFetcher is implemented by providers that serve transparent title logos.
type LogoFetcher interface {
	FetchLogo(ctx context.Context, title titles.Title, platform string, styles []string) (*Option, error)
}

// ScreenshotFetcher is implemented by providers that serve gameplay shots.
type ScreenshotFetcher interface {
	FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) ([]Option, error)
}
