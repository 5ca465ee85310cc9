package titles

import "regexp"

// romanNumerals maps the numerals that show up in game titles (I-XV).
var romanNumerals = map[string]string{
	"i": "1", "ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9", "x": "10",
	"xi": "11", "xii": "12", "xiii": "13", "xiv": "14", "xv": "15",
}

// romanSwaps are applied to cleaned titles to produce numeral search
// variants ("Final Fantasy VII" additionally searches as "Final Fantasy 7").
// Longer numerals first so III is not rewritten as two Is.
var romanSwaps = []struct {
	pattern *regexp.Regexp
	arabic  string
}{
	{regexp.MustCompile(`\bVIII\b`), "8"},
	{regexp.MustCompile(`\bIII\b`), "3"},
	{regexp.MustCompile(`\bVII\b`), "7"},
	{regexp.MustCompile(`\bXII\b`), "12"},
	{regexp.MustCompile(`\bII\b`), "2"},
	{regexp.MustCompile(`\bIV\b`), "4"},
	{regexp.MustCompile(`\bIX\b`), "9"},
	{regexp.MustCompile(`\bVI\b`), "6"},
	{regexp.MustCompile(`\bXI\b`), "11"},
}
