package match

import (
	"regexp"
	"strings"
)

var (
	pngSuffixPattern  = regexp.MustCompile(`(?i)\.png$`)
	bracketTagPattern = regexp.MustCompile(`\[[^\]]+\]`)
	parenChunkPattern = regexp.MustCompile(`\(([^)]*)\)`)
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeFilename aggressively normalizes a thumbnail filename (or a title)
// for index matching: extension and bracket tags stripped, parenthetical
// chunks kept as bare tokens, punctuation flattened to spaces.
func NormalizeFilename(s string) string {
	s = strings.ToLower(s)
	s = pngSuffixPattern.ReplaceAllString(s, "")
	s = bracketTagPattern.ReplaceAllString(s, "")
	s = parenChunkPattern.ReplaceAllString(s, " $1 ")
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ScoreFilename rates a normalized index filename against a normalized title:
// token Jaccard overlap with boosts for exact, prefix, and containment, and
// a small length bonus that discourages tiny collisions.
func ScoreFilename(titleNorm, fnameNorm string) int {
	if titleNorm == "" || fnameNorm == "" {
		return -1 << 30
	}
	if fnameNorm == titleNorm {
		return 500
	}

	score := 0
	if strings.HasPrefix(fnameNorm, titleNorm) || strings.HasPrefix(titleNorm, fnameNorm) {
		score += 200
	}
	if strings.Contains(fnameNorm, titleNorm) || strings.Contains(titleNorm, fnameNorm) {
		score += 120
	}

	t := tokenSet(titleNorm)
	f := tokenSet(fnameNorm)
	inter := intersectionSize(t, f)
	union := len(t) + len(f) - inter
	if union < 1 {
		union = 1
	}
	score += int(300 * float64(inter) / float64(union))

	length := len(fnameNorm)
	if length > 180 {
		length = 180
	}
	score += length / 6
	return score
}
