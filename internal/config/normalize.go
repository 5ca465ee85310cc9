package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeRun()
	c.normalizeProviders()
	c.normalizeTuning()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name string
		dst  *string
		def  string
	}{
		{"paths.borders_dir", &c.Paths.BordersDir, defaultBordersDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.review_dir", &c.Paths.ReviewDir, defaultReviewDir},
		{"paths.cache_dir", &c.Paths.CacheDir, defaultCacheDir},
		{"paths.ledger_dir", &c.Paths.LedgerDir, defaultLedgerDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.dst) == "" {
			*f.dst = f.def
		}
		expanded, err := expandPath(*f.dst)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = expanded
	}
	// Dataset is optional; expand only when configured.
	if strings.TrimSpace(c.Paths.DatasetDir) != "" {
		expanded, err := expandPath(c.Paths.DatasetDir)
		if err != nil {
			return fmt.Errorf("paths.dataset_dir: %w", err)
		}
		c.Paths.DatasetDir = expanded
	}
	return nil
}

func (c *Config) normalizeOutput() {
	if c.Output.Size <= 0 {
		c.Output.Size = defaultOutputSize
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	if c.Output.Quality <= 0 || c.Output.Quality > 100 {
		c.Output.Quality = defaultOutputQuality
	}
	if c.Output.HeroCount < 0 {
		c.Output.HeroCount = 0
	}
	if c.Output.SlideCount < 0 {
		c.Output.SlideCount = 0
	}
}

func (c *Config) normalizeRun() {
	if c.Run.Workers <= 0 {
		c.Run.Workers = defaultWorkers
	}
	c.Run.Mode = strings.ToLower(strings.TrimSpace(c.Run.Mode))
	if c.Run.Mode == "" {
		c.Run.Mode = defaultRunMode
	}
}

func (c *Config) normalizeProviders() {
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = defaultProviderOrder()
	}

	sg := &c.Providers.SteamGridDB
	if sg.APIKey == "" {
		if value, ok := os.LookupEnv("STEAMGRIDDB_API_KEY"); ok {
			sg.APIKey = value
		}
	}
	sg.BaseURL = strings.TrimSpace(sg.BaseURL)
	if sg.BaseURL == "" {
		sg.BaseURL = defaultSteamGridDBBaseURL
	}
	if strings.TrimSpace(sg.PreferredDimension) == "" {
		sg.PreferredDimension = defaultSteamGridDBDimension
	}
	if len(sg.SquareStyles) == 0 {
		sg.SquareStyles = defaultSquareStyles()
	}
	if sg.RequestDelayMS < 0 {
		sg.RequestDelayMS = 0
	}

	ig := &c.Providers.IGDB
	if ig.ClientID == "" {
		if value, ok := os.LookupEnv("TWITCH_CLIENT_ID"); ok {
			ig.ClientID = value
		}
	}
	if ig.ClientSecret == "" {
		if value, ok := os.LookupEnv("TWITCH_CLIENT_SECRET"); ok {
			ig.ClientSecret = value
		}
	}
	ig.BaseURL = strings.TrimSpace(ig.BaseURL)
	if ig.BaseURL == "" {
		ig.BaseURL = defaultIGDBBaseURL
	}
	if strings.TrimSpace(ig.CoverSize) == "" {
		ig.CoverSize = defaultIGDBCoverSize
	}

	tg := &c.Providers.TheGamesDB
	if tg.APIKey == "" {
		if value, ok := os.LookupEnv("THEGAMESDB_API_KEY"); ok {
			tg.APIKey = value
		}
	}
	tg.BaseURL = strings.TrimSpace(tg.BaseURL)
	if tg.BaseURL == "" {
		tg.BaseURL = defaultTheGamesDBBaseURL
	}
	if strings.TrimSpace(tg.PreferImageType) == "" {
		tg.PreferImageType = "boxart"
	}

	lr := &c.Providers.Libretro
	lr.BaseURL = strings.TrimSpace(lr.BaseURL)
	if lr.BaseURL == "" {
		lr.BaseURL = defaultLibretroBaseURL
	}
}

func (c *Config) normalizeTuning() {
	if c.AutoCenter.Steps <= 0 {
		c.AutoCenter.Steps = defaultAutoCenterSteps
	}
	if c.AutoCenter.Span <= 0 {
		c.AutoCenter.Span = defaultAutoCenterSpan
	}
	if c.AutoCenter.Tolerance <= 0 {
		c.AutoCenter.Tolerance = defaultAutoCenterTolerance
	}
	if len(c.Logo.Styles) == 0 {
		c.Logo.Styles = defaultLogoStyles()
	}
	if c.Logo.MinContentRatio <= 0 {
		c.Logo.MinContentRatio = defaultLogoMinContentRatio
	}
	if c.Logo.MaxCropRatio <= 0 {
		c.Logo.MaxCropRatio = defaultLogoMaxCropRatio
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
