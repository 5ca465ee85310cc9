package config

const (
	defaultBordersDir = "~/.config/gridsmith/borders"
	defaultOutputDir  = "~/gridsmith/output"
	defaultReviewDir  = "~/gridsmith/review"
	defaultCacheDir   = "~/.cache/gridsmith/artwork"
	defaultLedgerDir  = "~/.local/share/gridsmith"
	defaultLogDir     = "~/.local/share/gridsmith/logs"

	defaultOutputSize    = 1024
	defaultOutputFormat  = "jpg"
	defaultOutputQuality = 95

	defaultWorkers = 8
	defaultRunMode = "parallel"

	defaultSteamGridDBBaseURL   = "https://www.steamgriddb.com/api/v2"
	defaultSteamGridDBDimension = "1024x1024"
	defaultIGDBBaseURL          = "https://api.igdb.com/v4"
	defaultIGDBCoverSize        = "cover_big"
	defaultTheGamesDBBaseURL    = "https://api.thegamesdb.net/v1"
	defaultLibretroBaseURL      = "https://thumbnails.libretro.com"

	defaultAutoCenterSteps     = 5
	defaultAutoCenterSpan      = 0.22
	defaultAutoCenterTolerance = 0.06

	defaultLogoMinContentRatio = 0.15
	defaultLogoMaxCropRatio    = 0.85

	defaultCacheTTLHours = 168

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultSquareStyles() []string {
	return []string{"alternate", "material", "white_logo", "blurred", "no_logo"}
}

func defaultLogoStyles() []string {
	return []string{"official", "white", "black"}
}

func defaultProviderOrder() []string {
	return []string{"steamgriddb", "igdb", "thegamesdb", "libretro"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BordersDir: defaultBordersDir,
			OutputDir:  defaultOutputDir,
			ReviewDir:  defaultReviewDir,
			CacheDir:   defaultCacheDir,
			LedgerDir:  defaultLedgerDir,
			LogDir:     defaultLogDir,
		},
		Output: Output{
			Size:       defaultOutputSize,
			Format:     defaultOutputFormat,
			Quality:    defaultOutputQuality,
			SaveTitle:  true,
			HeroCount:  1,
			SlideCount: 0,
		},
		Run: Run{
			Workers:      defaultWorkers,
			Mode:         defaultRunMode,
			SkipExisting: true,
		},
		Providers: Providers{
			Order: defaultProviderOrder(),
			SteamGridDB: SteamGridDB{
				BaseURL:            defaultSteamGridDBBaseURL,
				PreferredDimension: defaultSteamGridDBDimension,
				SquareStyles:       defaultSquareStyles(),
			},
			IGDB: IGDB{
				BaseURL:   defaultIGDBBaseURL,
				CoverSize: defaultIGDBCoverSize,
			},
			TheGamesDB: TheGamesDB{
				BaseURL:         defaultTheGamesDBBaseURL,
				PreferImageType: "boxart",
			},
			Libretro: Libretro{
				BaseURL:       defaultLibretroBaseURL,
				IndexMatching: true,
			},
		},
		AutoCenter: AutoCenter{
			Enabled:   true,
			Steps:     defaultAutoCenterSteps,
			Span:      defaultAutoCenterSpan,
			Tolerance: defaultAutoCenterTolerance,
		},
		Logo: Logo{
			Enabled:         true,
			Styles:          defaultLogoStyles(),
			MinContentRatio: defaultLogoMinContentRatio,
			MaxCropRatio:    defaultLogoMaxCropRatio,
		},
		Fallback: Fallback{
			Enabled: false,
		},
		Cache: Cache{
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
