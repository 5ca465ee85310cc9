package titles

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title is a raw game name plus everything derived from it. Immutable once
// built by Normalize.
type Title struct {
	Raw        string
	Cleaned    string
	Normalized string
	// SearchVariants is the ordered retry sequence providers walk: cleaned
	// name first, then the ASCII-folded form, then pre-colon and pre-dash
	// prefixes, then Roman/Arabic numeral swaps. Deduplicated
	// case-insensitively, first occurrence wins.
	SearchVariants []string
	SequelNumber   string
	Subtitle       string
	Year           int
}

var (
	extensionPattern  = regexp.MustCompile(`(?i)\.(zip|7z|rar|nes|sfc|smc|gb|gbc|gba|nds|3ds|n64|z64|v64|gcm|iso|wbfs|rvz|md|gen|sms|gg|pce|bin|cue|chd|img|nsp|xci|psx|ps2|cso|pbp|32x|a26|a52|a78|lnx|ngp|ngc|ws|wsc|vb)$`)
	bracketPattern    = regexp.MustCompile(`\s*\[[^\]]*\]`)
	fileSizePattern   = regexp.MustCompile(`(?i)\s*\(\s*\d+\.?\d*\s*(GB|MB|KB|B|bytes?)?\s*\)`)
	bareNumberPattern = regexp.MustCompile(`\s*\(\s*\d{6,}\s*\)`)
	regionTagPattern  = regexp.MustCompile(`(?i)\s*\((USA|US|Europe|EU|Japan|JP|World|WLD|En|Fr|De|Es|It|Ja|Ko|Zh|Rev\s*[A-Z0-9]*|v\d+[.\d]*|Proto|Beta|Alpha|Demo|Sample|Unl|Pirate|Virtual Console|Switch|NSW|PS4|PS5|Xbox|XB1|PC|[A-Za-z]{2}(,[A-Za-z]{2})*)\)`)
	versionPattern    = regexp.MustCompile(`(?i)\s*v\d+(\.\d+)*`)
	versionWord       = regexp.MustCompile(`(?i)\s*version\s*\d+(\.\d+)*`)
	discPattern       = regexp.MustCompile(`(?i)\s*\(Disc\s*\d+[^)]*\)`)
	updateTagPattern  = regexp.MustCompile(`(?i)\s*\+?\s*(Update|DLC|Patch|Fix|Hotfix)\s*v?\d*(\.\d+)*`)
	emptyParenPattern = regexp.MustCompile(`\s*\(\s*\)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	punctPattern      = regexp.MustCompile(`[^\w\s'-]`)

	parenYearPattern  = regexp.MustCompile(`\((\d{4})\)`)
	bareYearPattern   = regexp.MustCompile(`\b(19[7-9]\d|20[0-2]\d)\b`)
	arabicTailPattern = regexp.MustCompile(`[\s:\-]+(\d+)\s*$`)
	arabicEndPattern  = regexp.MustCompile(`(\d+)\s*$`)
	romanTailPattern  = regexp.MustCompile(`\b(x{0,3}(?:ix|iv|v?i{0,3}))\s*$`)
	subtitlePattern   = regexp.MustCompile(`.*[:\-]\s*(.+)$`)
)

var symbolReplacer = strings.NewReplacer(
	"&", "and",
	"+", "plus",
	"@", "at",
	"\u2122", "", // ™
	"\u00ae", "", // ®
	"\u00a9", "", // ©
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2013", "-",
	"\u2014", "-",
	"\u2026", "...",
)

// Normalize derives a Title from a raw ROM filename, folder name, or manual
// entry. Degenerate input yields a Title with empty fields, never an error.
func Normalize(raw string) Title {
	cleaned := Clean(raw)
	normalized := normalizeForSearch(cleaned)

	t := Title{
		Raw:          raw,
		Cleaned:      cleaned,
		Normalized:   normalized,
		SequelNumber: extractSequelNumber(cleaned),
		Subtitle:     extractSubtitle(cleaned),
		Year:         extractYear(raw),
	}
	t.SearchVariants = searchVariants(cleaned, normalized)
	return t
}

// Clean strips dump tags, region/version parentheticals, file sizes, disc
// numbers, and extensions from a ROM name and collapses whitespace.
func Clean(name string) string {
	name = extensionPattern.ReplaceAllString(name, "")
	name = bracketPattern.ReplaceAllString(name, "")
	name = fileSizePattern.ReplaceAllString(name, "")
	name = bareNumberPattern.ReplaceAllString(name, "")
	name = regionTagPattern.ReplaceAllString(name, "")
	name = versionPattern.ReplaceAllString(name, "")
	name = versionWord.ReplaceAllString(name, "")
	name = discPattern.ReplaceAllString(name, "")
	name = updateTagPattern.ReplaceAllString(name, "")
	name = emptyParenPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	return strings.TrimRight(name, "-_. ")
}

// normalizeForSearch ASCII-folds a cleaned title: NFD decomposition with
// combining marks removed, common symbol substitutions, and punctuation
// reduced to spaces (apostrophes and hyphens survive).
func normalizeForSearch(cleaned string) string {
	folded := foldASCII(cleaned)
	folded = symbolReplacer.Replace(folded)
	folded = punctPattern.ReplaceAllString(folded, " ")
	folded = whitespacePattern.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldASCII(s string) string {
	out, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return out
}

func extractYear(title string) int {
	if title == "" {
		return 0
	}
	// A parenthesized year is the most reliable signal.
	if m := parenYearPattern.FindStringSubmatch(title); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= 1970 && year <= 2030 {
			return year
		}
	}
	if m := bareYearPattern.FindStringSubmatch(title); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	return 0
}

func extractSequelNumber(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	if m := arabicTailPattern.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	if m := arabicEndPattern.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	if m := romanTailPattern.FindStringSubmatch(t); m != nil {
		if arabic, ok := romanNumerals[m[1]]; ok {
			return arabic
		}
	}
	return ""
}

func extractSubtitle(title string) string {
	if title == "" {
		return ""
	}
	m := subtitlePattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	subtitle := strings.ToLower(strings.TrimSpace(m[1]))
	if len(subtitle) <= 2 || isAllDigits(subtitle) {
		return ""
	}
	return subtitle
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
