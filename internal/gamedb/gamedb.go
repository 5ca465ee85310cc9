// Package gamedb loads an optional local titles database: a directory of
// per-platform JSON files whose entries name the canonical releases for
// that platform. Loose ROM names are resolved against it before any
// provider is queried, which fixes abbreviated or mangled dump names.
package gamedb

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gridsmith/internal/logging"
	"gridsmith/internal/match"
)

// preferredKeys are tried in order when a JSON entry is an object.
var preferredKeys = []string{"name", "title", "game", "Game", "Title", "Name"}

// containerKeys are tried in order when the JSON root is an object wrapping
// a list.
var containerKeys = []string{"data", "games", "items", "list", "entries"}

var nonAlnumKey = regexp.MustCompile(`[^a-z0-9]+`)

// Dataset holds the per-platform title lists, keyed by the JSON file stem.
type Dataset struct {
	platforms map[string][]string
	normIndex map[string]string
	logger    *slog.Logger
}

// Load reads every *.json file under dir. Files that fail to parse or
// yield no titles are skipped with a log line rather than failing the load;
// an entirely empty dataset is an error.
func Load(dir string, logger *slog.Logger) (*Dataset, error) {
	log := logging.NewComponentLogger(logger, "gamedb")

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dataset directory: %w", err)
	}
	sort.Strings(files)

	ds := &Dataset{
		platforms: make(map[string][]string),
		normIndex: make(map[string]string),
		logger:    log,
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable dataset file", logging.String("path", path), logging.Error(err))
			continue
		}
		var obj any
		if err := json.Unmarshal(data, &obj); err != nil {
			log.Warn("skipping malformed dataset file", logging.String("path", path), logging.Error(err))
			continue
		}
		titles := extractTitles(obj)
		if len(titles) == 0 {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		ds.platforms[stem] = titles
	}

	if len(ds.platforms) == 0 {
		return nil, fmt.Errorf("no platform titles found under %s", dir)
	}
	for key := range ds.platforms {
		if nk := normKey(key); nk != "" {
			if _, exists := ds.normIndex[nk]; !exists {
				ds.normIndex[nk] = key
			}
		}
	}

	log.Info("dataset loaded", logging.Int("platforms", len(ds.platforms)))
	return ds, nil
}

// Platforms returns the dataset keys in sorted order.
func (d *Dataset) Platforms() []string {
	keys := make([]string, 0, len(d.platforms))
	for k := range d.platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve maps a configured platform key (plus its aliases) to a dataset
// entry by normalized equality only. Substring matching is deliberately
// absent: it conflates DS/3DS and GB/GBC/GBA.
func (d *Dataset) Resolve(platformKey string, aliases []string) (string, []string, bool) {
	candidates := append(append([]string{}, aliases...), platformKey)
	for _, alias := range candidates {
		nk := normKey(alias)
		if nk == "" {
			continue
		}
		if realKey, ok := d.normIndex[nk]; ok {
			return realKey, d.platforms[realKey], true
		}
	}
	return "", nil, false
}

// Lookup resolves the platform and returns the canonical titles best
// matching a loose ROM name. When the platform is absent, or nothing
// clears the fuzzy threshold, the input name comes back unchanged so the
// caller can query providers with it directly.
func (d *Dataset) Lookup(platformKey string, aliases []string, romName string, maxResults int) []string {
	_, titles, ok := d.Resolve(platformKey, aliases)
	if !ok {
		return []string{romName}
	}
	return match.BestTitles(romName, titles, maxResults)
}

// extractTitles pulls title strings out of a decoded JSON document:
// a bare list, or an object wrapping a list under a known container key.
func extractTitles(obj any) []string {
	switch v := obj.(type) {
	case []any:
		return dedupeTitles(itemsToTitles(v))
	case map[string]any:
		for _, key := range containerKeys {
			if list, ok := v[key].([]any); ok {
				return dedupeTitles(itemsToTitles(list))
			}
		}
		if t, ok := titleFromItem(v); ok {
			return []string{t}
		}
	}
	return nil
}

func itemsToTitles(items []any) []string {
	var titles []string
	for _, item := range items {
		if t, ok := titleFromItem(item); ok {
			titles = append(titles, t)
		}
	}
	return titles
}

// titleFromItem accepts either a bare string or an object carrying the
// title under one of the preferred keys. Unknown object shapes fall back
// to the first string field in key order.
func titleFromItem(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		t := strings.TrimSpace(v)
		return t, t != ""
	case map[string]any:
		for _, key := range preferredKeys {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := v[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

func dedupeTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normKey(s string) string {
	return nonAlnumKey.ReplaceAllString(strings.ToLower(s), "")
}
