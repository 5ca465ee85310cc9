package match

import (
	"sort"
	"strings"

	"gridsmith/internal/titles"
)

// criticalKeywords distinguish different versions or editions of the same
// base game. When the query carries one and a candidate lacks it, the
// candidate is a categorically different product, not a weak match.
var criticalKeywords = map[string]struct{}{
	"trilogy": {}, "collection": {}, "compilation": {}, "anthology": {}, "bundle": {},
	"remaster": {}, "remastered": {}, "remake": {}, "hd": {}, "definitive": {}, "complete": {},
	"goty": {}, "ultimate": {}, "deluxe": {}, "premium": {}, "gold": {}, "platinum": {},
	"2": {}, "3": {}, "4": {}, "5": {}, "6": {}, "7": {}, "8": {}, "9": {}, "10": {},
	"ii": {}, "iii": {}, "iv": {}, "v": {}, "vi": {}, "vii": {}, "viii": {}, "ix": {}, "x": {},
	"zero": {}, "origins": {}, "revelations": {}, "corruption": {}, "echoes": {}, "hunters": {},
	"prime": {}, "fusion": {}, "super": {}, "advance": {}, "portable": {}, "pocket": {},
}

// sequelIndicators is the subset of critical keywords whose presence in the
// candidate alone (e.g. "Metroid Prime 3" against query "Metroid Prime")
// excludes the candidate outright.
var sequelIndicators = map[string]struct{}{
	"2": {}, "3": {}, "4": {}, "5": {}, "6": {}, "7": {}, "8": {}, "9": {}, "10": {},
	"ii": {}, "iii": {}, "iv": {}, "v": {}, "vi": {}, "vii": {}, "viii": {}, "ix": {}, "x": {},
	"trilogy": {}, "collection": {}, "compilation": {},
}

// TitleMatch is one local-database title with its similarity score.
type TitleMatch struct {
	Title string
	Score float64
}

// FilterTitles fuzzy-matches a search term against database titles using the
// hard critical-keyword gate: candidates missing a critical keyword the
// query has, or carrying a sequel indicator the query lacks, are excluded
// rather than penalized. Results are sorted by score descending; equal
// scores keep input order.
//
// This is the local-dataset policy. Live provider search uses Score, which
// penalizes the same mismatches gradually. The two are kept separate on
// purpose; unifying them would silently change matching outcomes.
func FilterTitles(searchTerm string, databaseTitles []string, threshold float64) []TitleMatch {
	if searchTerm == "" || len(databaseTitles) == 0 {
		return nil
	}

	searchNorm := strings.ToLower(titles.Normalize(searchTerm).Normalized)
	searchTokens := tokenSet(searchNorm)
	searchCritical := criticalSubset(searchTokens)

	var results []TitleMatch
	for _, dbTitle := range databaseTitles {
		titleNorm := strings.ToLower(titles.Normalize(dbTitle).Normalized)
		titleTokens := tokenSet(titleNorm)
		titleCritical := criticalSubset(titleTokens)

		if missing := subtract(searchCritical, titleCritical); len(missing) > 0 {
			continue
		}
		if extra := subtract(titleCritical, searchCritical); hasSequelIndicator(extra) {
			continue
		}

		if score, ok := similarity(searchNorm, titleNorm, searchTokens, titleTokens, threshold); ok {
			results = append(results, TitleMatch{Title: dbTitle, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// BestTitles returns up to maxResults matching database titles, or the
// search term itself when nothing clears the threshold.
func BestTitles(searchTerm string, databaseTitles []string, maxResults int) []string {
	matches := FilterTitles(searchTerm, databaseTitles, 0.5)
	if len(matches) == 0 {
		return []string{searchTerm}
	}
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Title)
	}
	return out
}

// similarity layers matching strategies from strict to lenient and returns
// the first that clears the threshold.
func similarity(searchNorm, titleNorm string, searchTokens, titleTokens map[string]struct{}, threshold float64) (float64, bool) {
	if searchNorm == titleNorm {
		return 1.0, true
	}

	if strings.Contains(titleNorm, searchNorm) || strings.Contains(searchNorm, titleNorm) {
		shorter, longer := len(searchNorm), len(titleNorm)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 0.85 + float64(shorter)/float64(longer)*0.1, true
	}

	if len(searchTokens) > 0 && len(titleTokens) > 0 {
		inter := intersectionSize(searchTokens, titleTokens)
		union := len(searchTokens) + len(titleTokens) - inter
		jaccard := 0.0
		if union > 0 {
			jaccard = float64(inter) / float64(union)
		}
		if inter == len(searchTokens) { // every query token found
			jaccard = minFloat(1.0, jaccard+0.2)
		}
		if jaccard >= threshold {
			return jaccard, true
		}
	}

	if ratio := editSimilarity(searchNorm, titleNorm); ratio >= threshold {
		return ratio, true
	}

	if prefixOverlap(searchNorm, titleNorm) {
		return 0.65, true
	}
	return 0, false
}

// editSimilarity is 1 - levenshtein/maxlen, the typo-tolerant last resort.
func editSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1.0 - float64(prev[lb])/float64(maxLen)
}

func prefixOverlap(a, b string) bool {
	head := func(s string) string {
		if len(s) > 10 {
			return s[:10]
		}
		return s
	}
	return strings.HasPrefix(a, head(b)) || strings.HasPrefix(b, head(a))
}

func criticalSubset(tokens map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for tok := range tokens {
		if _, ok := criticalKeywords[tok]; ok {
			out[tok] = struct{}{}
		}
	}
	return out
}

func subtract(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for tok := range a {
		if _, ok := b[tok]; !ok {
			out[tok] = struct{}{}
		}
	}
	return out
}

func hasSequelIndicator(tokens map[string]struct{}) bool {
	for tok := range tokens {
		if _, ok := sequelIndicators[tok]; ok {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
