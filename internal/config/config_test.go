package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gridsmith/internal/config"
)

func TestLoadDefaultsAndEnvCredentials(t *testing.T) {
	t.Setenv("STEAMGRIDDB_API_KEY", "env-sg-key")
	t.Setenv("TWITCH_CLIENT_ID", "env-twitch-id")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "gridsmith", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.DatasetDir != "" {
		t.Fatalf("expected dataset dir unset by default, got %q", cfg.Paths.DatasetDir)
	}
	if cfg.Output.Size != 1024 || cfg.Output.Format != "jpg" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Run.Mode != "parallel" || cfg.Run.Workers != 8 {
		t.Fatalf("unexpected run defaults: %+v", cfg.Run)
	}
	if cfg.Providers.SteamGridDB.APIKey != "env-sg-key" {
		t.Fatalf("expected SteamGridDB key from env, got %q", cfg.Providers.SteamGridDB.APIKey)
	}
	if cfg.Providers.IGDB.ClientID != "env-twitch-id" {
		t.Fatalf("expected IGDB client id from env, got %q", cfg.Providers.IGDB.ClientID)
	}
	if got := cfg.Providers.Order; len(got) != 4 || got[0] != "steamgriddb" {
		t.Fatalf("unexpected provider order: %v", got)
	}
	if !cfg.AutoCenter.Enabled || cfg.AutoCenter.Steps != 5 {
		t.Fatalf("unexpected autocenter defaults: %+v", cfg.AutoCenter)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Fatalf("unexpected cache ttl: %d", cfg.Cache.TTLHours)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	content := `
[paths]
output_dir = "~/icons"
dataset_dir = "~/gamesdb"

[output]
size = 512
format = "png"

[run]
mode = "sequential"
workers = 2

[[platforms]]
key = "snes"
folder = "SNES"

[providers.steamgriddb]
api_key = "file-key"
`
	path := filepath.Join(tempHome, "gridsmith.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "icons") {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.DatasetDir != filepath.Join(tempHome, "gamesdb") {
		t.Fatalf("dataset dir not expanded: %q", cfg.Paths.DatasetDir)
	}
	if cfg.Output.Size != 512 || cfg.Output.Format != "png" {
		t.Fatalf("unexpected output: %+v", cfg.Output)
	}
	if cfg.Run.Mode != "sequential" || cfg.Run.Workers != 2 {
		t.Fatalf("unexpected run: %+v", cfg.Run)
	}
	if cfg.Providers.SteamGridDB.APIKey != "file-key" {
		t.Fatalf("unexpected key: %q", cfg.Providers.SteamGridDB.APIKey)
	}
	// Unset sections keep their defaults.
	if cfg.Providers.IGDB.BaseURL != config.Default().Providers.IGDB.BaseURL {
		t.Fatalf("unexpected IGDB base url: %q", cfg.Providers.IGDB.BaseURL)
	}

	p, ok := cfg.PlatformByKey("snes")
	if !ok || p.Folder != "SNES" {
		t.Fatalf("PlatformByKey(snes) = %+v, %v", p, ok)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "bad format",
			mutate: func(c *config.Config) { c.Output.Format = "webp" },
			want:   "output.format",
		},
		{
			name:   "bad mode",
			mutate: func(c *config.Config) { c.Run.Mode = "turbo" },
			want:   "run.mode",
		},
		{
			name: "platform without folder",
			mutate: func(c *config.Config) {
				c.Platforms = []config.Platform{{Key: "snes"}}
			},
			want: "folder",
		},
		{
			name: "duplicate platform",
			mutate: func(c *config.Config) {
				c.Platforms = []config.Platform{
					{Key: "snes", Folder: "A"},
					{Key: "snes", Folder: "B"},
				}
			},
			want: "duplicate platform",
		},
		{
			name:   "unknown provider",
			mutate: func(c *config.Config) { c.Providers.Order = []string{"mobygames"} },
			want:   "unknown provider",
		},
		{
			name: "fallback without icon",
			mutate: func(c *config.Config) {
				c.Fallback.Enabled = true
				c.Fallback.IconPath = ""
			},
			want: "fallback.icon_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Output.Format = "jpg"
			cfg.Run.Mode = "parallel"
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted bad config")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.Sample()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Output.Size != 1024 {
		t.Fatalf("sample output size = %d", cfg.Output.Size)
	}
	if len(cfg.Platforms) == 0 {
		t.Fatal("sample config has no platform example")
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("CreateSample overwrote existing file")
	}
}
