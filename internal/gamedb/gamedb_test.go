package gamedb

import (
	"os"
	"path/filepath"
	"testing"

	"gridsmith/internal/logging"
)

func writeDataset(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadExtractsTitleShapes(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		// Bare string list.
		"Super Nintendo.json": `["Super Mario World", "Chrono Trigger", "super mario world"]`,
		// Object list under a container key, mixed title keys.
		"Sega Genesis.json": `{"games":[{"name":"Sonic the Hedgehog"},{"title":"Ecco the Dolphin"}]}`,
		// Malformed file must be skipped, not fatal.
		"Broken.json": `{not json`,
	})

	ds, err := Load(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := ds.Platforms()
	want := []string{"Sega Genesis", "Super Nintendo"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Platforms() = %v, want %v", got, want)
	}

	_, titles, ok := ds.Resolve("Super Nintendo", nil)
	if !ok {
		t.Fatal("Resolve(Super Nintendo) not found")
	}
	if len(titles) != 2 {
		t.Errorf("len(titles) = %d, want case-insensitive dedup to 2", len(titles))
	}

	_, titles, ok = ds.Resolve("Sega Genesis", nil)
	if !ok || len(titles) != 2 || titles[0] != "Sonic the Hedgehog" {
		t.Errorf("Sega Genesis titles = %v, ok=%v", titles, ok)
	}
}

func TestResolveUsesNormalizedAliases(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		"Super Nintendo Entertainment System.json": `["Super Mario World"]`,
	})
	ds, err := Load(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	key, _, ok := ds.Resolve("snes", []string{"super-nintendo-entertainment-system"})
	if !ok {
		t.Fatal("Resolve() with normalized alias not found")
	}
	if key != "Super Nintendo Entertainment System" {
		t.Errorf("resolved key = %q", key)
	}

	// Equality only: "DS" must not resolve against a "3DS" dataset.
	dir2 := writeDataset(t, map[string]string{"Nintendo 3DS.json": `["Game"]`})
	ds2, err := Load(dir2, logging.NewNop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, _, ok := ds2.Resolve("DS", []string{"Nintendo DS"}); ok {
		t.Error("Resolve(DS) matched the 3DS dataset")
	}
}

func TestLookupResolvesLooseNames(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		"Super Nintendo.json": `["Super Mario World", "Super Mario Kart", "Chrono Trigger"]`,
	})
	ds, err := Load(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := ds.Lookup("Super Nintendo", nil, "Super Mario World (USA)", 1)
	if len(got) != 1 || got[0] != "Super Mario World" {
		t.Errorf("Lookup() = %v, want the canonical title", got)
	}

	// Unknown platform passes the name through.
	got = ds.Lookup("dos", nil, "Commander Keen", 1)
	if len(got) != 1 || got[0] != "Commander Keen" {
		t.Errorf("Lookup(unknown platform) = %v", got)
	}
}

func TestLoadEmptyDatasetFails(t *testing.T) {
	dir := writeDataset(t, map[string]string{"Broken.json": `{not json`})
	if _, err := Load(dir, logging.NewNop()); err == nil {
		t.Error("Load() with no usable files succeeded, want error")
	}
}
