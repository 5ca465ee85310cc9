package main

import (
	"errors"
	"log/slog"
	"time"

	"gridsmith/internal/artcache"
	"gridsmith/internal/config"
	"gridsmith/internal/providers"
	"gridsmith/internal/providers/igdb"
	"gridsmith/internal/providers/libretro"
	"gridsmith/internal/providers/steamgriddb"
	"gridsmith/internal/providers/thegamesdb"
)

// buildProviders assembles the configured provider chain in priority order.
func buildProviders(cfg *config.Config, logger *slog.Logger) (*providers.Orchestrator, *artcache.Cache, error) {
	cache, err := artcache.Open(cfg.Paths.CacheDir, time.Duration(cfg.Cache.TTLHours)*time.Hour, logger)
	if err != nil {
		return nil, nil, err
	}

	hints := make(map[string][]string)
	igdbPlatforms := make(map[string]int)
	tgdbPlatforms := make(map[string]int)
	playlists := make(map[string]string)
	for _, p := range cfg.Platforms {
		if len(p.Hints) > 0 {
			hints[p.Key] = p.Hints
		}
		if p.IGDBPlatformID > 0 {
			igdbPlatforms[p.Key] = p.IGDBPlatformID
		}
		if p.TGDBPlatformID > 0 {
			tgdbPlatforms[p.Key] = p.TGDBPlatformID
		}
		if p.LibretroPlaylist != "" {
			playlists[p.Key] = p.LibretroPlaylist
		}
	}

	var chain []providers.Provider
	for _, name := range cfg.Providers.Order {
		switch name {
		case "steamgriddb":
			sg := cfg.Providers.SteamGridDB
			chain = append(chain, steamgriddb.New(sg.APIKey, sg.BaseURL, hints, cache, logger,
				steamgriddb.WithRequestDelay(time.Duration(sg.RequestDelayMS)*time.Millisecond)))
		case "igdb":
			ig := cfg.Providers.IGDB
			chain = append(chain, igdb.New(ig.ClientID, ig.ClientSecret, ig.BaseURL, ig.CoverSize, igdbPlatforms, cache, logger))
		case "thegamesdb":
			tg := cfg.Providers.TheGamesDB
			chain = append(chain, thegamesdb.New(tg.APIKey, tg.BaseURL, tg.PreferImageType, tgdbPlatforms, cache, logger))
		case "libretro":
			lr := cfg.Providers.Libretro
			var opts []libretro.Option
			if !lr.IndexMatching {
				opts = append(opts, libretro.WithoutIndexMatching())
			}
			chain = append(chain, libretro.New(lr.BaseURL, playlists, cache, logger, opts...))
		}
	}
	if len(chain) == 0 {
		return nil, nil, errors.New("no providers configured")
	}

	return providers.NewOrchestrator(chain, logger), cache, nil
}
