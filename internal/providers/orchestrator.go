package providers

import (
	"context"
	"log/slog"
	"time"

	"gridsmith/internal/logging"
	"gridsmith/internal/titles"
)

// DefaultJoinTimeout bounds how long a parallel fetch waits for stragglers.
const DefaultJoinTimeout = 30 * time.Second

// Orchestrator fans a title out across the configured providers. Provider
// order is priority order; a provider failure is logged and the next one
// tried, never propagated.
type Orchestrator struct {
	providers   []Provider
	logger      *slog.Logger
	joinTimeout time.Duration
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithJoinTimeout overrides the parallel-fetch join timeout.
func WithJoinTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.joinTimeout = d
		}
	}
}

// NewOrchestrator builds an orchestrator over providers in priority order.
func NewOrchestrator(list []Provider, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		providers:   list,
		logger:      logging.NewComponentLogger(logger, "providers"),
		joinTimeout: DefaultJoinTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the configured providers in priority order.
func (o *Orchestrator) Providers() []Provider {
	return o.providers
}

// FetchFirst tries providers in priority order and returns the first
// artwork found. Unavailable providers are skipped; errors are logged and
// the next provider tried. Returns ErrNoArtwork when every source is
// exhausted, or the context error on cancellation.
func (o *Orchestrator) FetchFirst(ctx context.Context, title titles.Title, platform string, prefs StylePrefs) (*Option, error) {
	for _, p := range o.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !p.Available(platform) {
			continue
		}
		pctx := logging.WithProvider(ctx, p.ID())
		log := logging.WithContext(pctx, o.logger)
		opt, err := p.FetchBest(pctx, title, platform, prefs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("provider fetch failed",
				logging.String(logging.FieldEventType, "provider_miss"),
				logging.String("title", title.Cleaned),
				logging.Error(err))
			continue
		}
		if opt != nil {
			log.Debug("artwork resolved",
				logging.String("title", title.Cleaned),
				logging.String("source", opt.SourceTag))
			return opt, nil
		}
	}
	return nil, ErrNoArtwork
}

type providerResult struct {
	index   int
	options []Option
}

// FetchAll queries every available provider concurrently and merges the
// results in provider declaration order, so interactive selection lists
// stay stable across runs. Providers that miss the join timeout are
// abandoned; their goroutines drain when their context is cancelled.
func (o *Orchestrator) FetchAll(ctx context.Context, title titles.Title, platform string, prefs StylePrefs, maxPerProvider int) []Option {
	fetchCtx, cancel := context.WithTimeout(ctx, o.joinTimeout)
	defer cancel()

	results := make(chan providerResult, len(o.providers))
	launched := 0
	for i, p := range o.providers {
		if !p.Available(platform) {
			continue
		}
		launched++
		go func(index int, p Provider) {
			pctx := logging.WithProvider(fetchCtx, p.ID())
			log := logging.WithContext(pctx, o.logger)
			opts, err := p.FetchAll(pctx, title, platform, prefs, maxPerProvider)
			if err != nil {
				log.Warn("provider fetch failed",
					logging.String(logging.FieldEventType, "provider_miss"),
					logging.String("title", title.Cleaned),
					logging.Error(err))
				results <- providerResult{index: index}
				return
			}
			results <- providerResult{index: index, options: opts}
		}(i, p)
	}

	byProvider := make(map[int][]Option, launched)
collect:
	for received := 0; received < launched; received++ {
		select {
		case r := <-results:
			if len(r.options) > 0 {
				byProvider[r.index] = r.options
			}
		case <-fetchCtx.Done():
			o.logger.Warn("parallel fetch join timed out",
				logging.String("title", title.Cleaned),
				logging.Int("pending", launched-received))
			break collect
		}
	}

	var merged []Option
	for i := range o.providers {
		merged = append(merged, byProvider[i]...)
	}
	return merged
}

// FetchHeroes asks hero-capable providers in priority order until one
// returns results.
func (o *Orchestrator) FetchHeroes(ctx context.Context, title titles.Title, platform string, maxResults int) []Option {
	for _, p := range o.providers {
		hf, ok := p.(HeroFetcher)
		if !ok || !p.Available(platform) {
			continue
		}
		opts, err := hf.FetchHeroes(ctx, title, platform, maxResults)
		if err != nil {
			o.logger.Warn("hero fetch failed",
				logging.String(logging.FieldProvider, p.ID()),
				logging.Error(err))
			continue
		}
		if len(opts) > 0 {
			return opts
		}
	}
	return nil
}

// FetchLogo asks logo-capable providers in priority order until one
// returns a result.
func (o *Orchestrator) FetchLogo(ctx context.Context, title titles.Title, platform string, styles []string) *Option {
	for _, p := range o.providers {
		lf, ok := p.(LogoFetcher)
		if !ok || !p.Available(platform) {
			continue
		}
		opt, err := lf.FetchLogo(ctx, title, platform, styles)
		if err != nil {
			o.logger.Warn("logo fetch failed",
				logging.String(logging.FieldProvider, p.ID()),
				logging.Error(err))
			continue
		}
		if opt != nil {
			return opt
		}
	}
	return nil
}

// FetchScreenshots asks screenshot-capable providers in priority order
// until one returns results.
func (o *Orchestrator) FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) []Option {
	for _, p := range o.providers {
		sf, ok := p.(ScreenshotFetcher)
		if !ok || !p.Available(platform) {
			continue
		}
		opts, err := sf.FetchScreenshots(ctx, title, platform, maxResults)
		if err != nil {
			o.logger.Warn("screenshot fetch failed",
				logging.String(logging.FieldProvider, p.ID()),
				logging.Error(err))
			continue
		}
		if len(opts) > 0 {
			return opts
		}
	}
	return nil
}
