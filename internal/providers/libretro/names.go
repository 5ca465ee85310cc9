package libretro

import (
	"regexp"
	"strings"

	"gridsmith/internal/titles"
)

// badFilenameChars are replaced with '_' in thumbnail filenames, per the
// libretro naming convention.
const badFilenameChars = `&*/:<>?\|"`

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	dashSpaces = regexp.MustCompile(`\s*-\s*`)
	colonSpace = regexp.MustCompile(`\s*:\s*`)
)

// regionSuffixes are appended to the base name, most common regions first.
var regionSuffixes = []string{
	"World", "USA", "Europe", "Japan",
	"USA, Europe", "USA, Australia", "Europe, Australia",
	"Japan, USA", "Japan, Europe",
}

// sanitizeFilename applies the libretro filename character rules.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, ch := range strings.TrimSpace(name) {
		if strings.ContainsRune(badFilenameChars, ch) {
			b.WriteRune('_')
		} else {
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}

// candidateNames generates the thumbnail filenames (without extension) to
// try directly before falling back to index matching: the cleaned title,
// its accent-folded form, region-tagged variants, and punctuation tweaks.
func candidateNames(title titles.Title) []string {
	base := sanitizeFilename(title.Cleaned)
	normalized := sanitizeFilename(title.Normalized)

	candidates := []string{base}
	if normalized != base {
		candidates = append(candidates, normalized)
	}
	for _, region := range regionSuffixes {
		candidates = append(candidates, base+" ("+region+")")
	}
	candidates = append(candidates,
		dashSpaces.ReplaceAllString(base, " - "),
		colonSpace.ReplaceAllString(base, ": "),
	)

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
