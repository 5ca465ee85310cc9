package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	BordersDir string `toml:"borders_dir"`
	OutputDir  string `toml:"output_dir"`
	ReviewDir  string `toml:"review_dir"`
	CacheDir   string `toml:"cache_dir"`
	DatasetDir string `toml:"dataset_dir"`
	LedgerDir  string `toml:"ledger_dir"`
	LogDir     string `toml:"log_dir"`
}

// Output controls the exported files.
type Output struct {
	Size       int    `toml:"size"`
	Format     string `toml:"format"`
	Quality    int    `toml:"quality"`
	SaveTitle  bool   `toml:"save_title"`
	HeroCount  int    `toml:"hero_count"`
	SlideCount int    `toml:"slide_count"`
}

// Run controls scheduling.
type Run struct {
	Workers      int    `toml:"workers"`
	Mode         string `toml:"mode"`
	SkipExisting bool   `toml:"skip_existing"`
}

// Platform describes one target system.
type Platform struct {
	Key              string   `toml:"key"`
	Folder           string   `toml:"folder"`
	Aliases          []string `toml:"aliases"`
	Hints            []string `toml:"hints"`
	Border           string   `toml:"border"`
	IGDBPlatformID   int      `toml:"igdb_platform_id"`
	TGDBPlatformID   int      `toml:"tgdb_platform_id"`
	LibretroPlaylist string   `toml:"libretro_playlist"`
}

// SteamGridDB contains configuration for the SteamGridDB API.
type SteamGridDB struct {
	APIKey             string   `toml:"api_key"`
	BaseURL            string   `toml:"base_url"`
	PreferredDimension string   `toml:"preferred_dimension"`
	SquareStyles       []string `toml:"square_styles"`
	AllowAnimated      bool     `toml:"allow_animated"`
	RequestDelayMS     int      `toml:"request_delay_ms"`
}

// IGDB contains Twitch client-credentials configuration for the IGDB API.
type IGDB struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	CoverSize    string `toml:"cover_size"`
}

// TheGamesDB contains configuration for the TheGamesDB API.
type TheGamesDB struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	PreferImageType string `toml:"prefer_image_type"`
}

// Libretro contains configuration for the libretro thumbnails tree.
type Libretro struct {
	BaseURL       string `toml:"base_url"`
	IndexMatching bool   `toml:"index_matching"`
}

// Providers holds the ordered provider chain and per-provider settings.
type Providers struct {
	Order       []string    `toml:"order"`
	SteamGridDB SteamGridDB `toml:"steamgriddb"`
	IGDB        IGDB        `toml:"igdb"`
	TheGamesDB  TheGamesDB  `toml:"thegamesdb"`
	Libretro    Libretro    `toml:"libretro"`
}

// AutoCenter tunes the centering grid search.
type AutoCenter struct {
	Enabled   bool    `toml:"enabled"`
	Steps     int     `toml:"steps"`
	Span      float64 `toml:"span"`
	Tolerance float64 `toml:"tolerance"`
}

// Logo tunes logo detection and cropping for title images.
type Logo struct {
	Enabled         bool     `toml:"enabled"`
	Styles          []string `toml:"styles"`
	MinContentRatio float64  `toml:"min_content_ratio"`
	MaxCropRatio    float64  `toml:"max_crop_ratio"`
}

// Fallback controls the static icon used when no provider has artwork.
type Fallback struct {
	Enabled  bool   `toml:"enabled"`
	IconPath string `toml:"icon_path"`
}

// Cache controls the on-disk artwork cache.
type Cache struct {
	TTLHours int `toml:"ttl_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gridsmith.
//
// Configuration sections by subsystem:
//   - Paths: border templates, output tree, review sidecars, caches
//   - Output: exported icon size, format, and optional extras
//   - Run: worker count, scheduling mode, idempotency
//   - Platforms: per-system folder names, hints, and provider mappings
//   - Providers: ordered chain and per-provider credentials/settings
//   - AutoCenter / Logo / Fallback: compositing policy knobs
//   - Cache: artwork cache retention
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Output     Output     `toml:"output"`
	Run        Run        `toml:"run"`
	Platforms  []Platform `toml:"platforms"`
	Providers  Providers  `toml:"providers"`
	AutoCenter AutoCenter `toml:"autocenter"`
	Logo       Logo       `toml:"logo"`
	Fallback   Fallback   `toml:"fallback"`
	Cache      Cache      `toml:"cache"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gridsmith/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gridsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ReviewDir, c.Paths.CacheDir, c.Paths.LedgerDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PlatformByKey returns the platform entry for a configured key.
func (c *Config) PlatformByKey(key string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}
