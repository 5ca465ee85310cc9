package match

import (
	"regexp"
	"strings"

	"gridsmith/internal/titles"
)

// Candidate is one provider-side search hit prior to image download.
type Candidate struct {
	ProviderID string
	ExternalID string
	Name       string
	Popularity float64
	Meta       Metadata
	Score      int
}

// Scoring weights. The sequel penalties are deliberately asymmetric: a
// mismatched sequel number is a stronger negative signal than token overlap
// is a positive one, because "Game II" and "Game III" share almost every
// token but are different products.
const (
	exactNameBonus    = 200
	prefixNameBonus   = 140
	containsNameBonus = 90
	tokenOverlapUnit  = 8
	tokenOverlapCap   = 80
	platformHintBonus = 60

	sequelMatchBonus    = 150
	sequelMismatchPen   = -200
	sequelMissingPen    = -150
	subtitleStrongBonus = 100
	subtitleWeakBonus   = 30
	subtitleDisjointPen = -50
	subtitleMissingPen  = -80
	yearExactBonus      = 100
	yearOffByOneBonus   = 50
	yearCloseBonus      = 20
	yearFarPenalty      = -50
)

// DefaultTopCandidates is how many leading search hits are scored before
// the best one is selected.
const DefaultTopCandidates = 8

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Score rates candidateName against the query title. Deterministic, pure,
// additive, and allowed to go negative.
func Score(title titles.Title, candidateName string, meta Metadata, platformHints []string) int {
	t := strings.ToLower(strings.TrimSpace(title.Normalized))
	n := strings.ToLower(strings.TrimSpace(candidateName))
	score := 0

	switch {
	case n == t && t != "":
		score += exactNameBonus
	case t != "" && (strings.HasPrefix(n, t) || strings.HasPrefix(t, n)):
		score += prefixNameBonus
	case t != "" && (strings.Contains(n, t) || strings.Contains(t, n)):
		score += containsNameBonus
	}

	tTokens := tokenSet(t)
	nTokens := tokenSet(n)
	overlap := intersectionSize(tTokens, nTokens) * tokenOverlapUnit
	if overlap > tokenOverlapCap {
		overlap = tokenOverlapCap
	}
	score += overlap

	if len(platformHints) > 0 {
		metaText := meta.Flatten()
		for _, hint := range platformHints {
			hint = strings.ToLower(strings.TrimSpace(hint))
			if hint != "" && strings.Contains(metaText, hint) {
				score += platformHintBonus
			}
		}
	}

	candidate := titles.Normalize(candidateName)

	if title.SequelNumber != "" {
		switch {
		case candidate.SequelNumber == title.SequelNumber:
			score += sequelMatchBonus
		case candidate.SequelNumber != "":
			score += sequelMismatchPen
		default:
			score += sequelMissingPen
		}
	}

	if title.Subtitle != "" {
		if candidate.Subtitle != "" {
			overlap := intersectionSize(tokenSet(title.Subtitle), tokenSet(candidate.Subtitle))
			switch {
			case overlap >= 2:
				score += subtitleStrongBonus
			case overlap == 1:
				score += subtitleWeakBonus
			default:
				score += subtitleDisjointPen
			}
		} else {
			score += subtitleMissingPen
		}
	}

	if title.Year != 0 {
		if metaYear := meta.ReleaseYear(); metaYear != 0 {
			diff := title.Year - metaYear
			if diff < 0 {
				diff = -diff
			}
			switch {
			case diff == 0:
				score += yearExactBonus
			case diff == 1:
				score += yearOffByOneBonus
			case diff <= 2:
				score += yearCloseBonus
			case diff >= 5:
				score += yearFarPenalty
			}
		}
	}

	return score
}

// SelectBest scores the first topN candidates and returns the winner.
// Ties fall back to higher popularity, then lower external id; a full tie
// keeps the first-seen candidate so selection stays deterministic across
// runs. The returned candidate carries its computed score.
func SelectBest(title titles.Title, candidates []Candidate, platformHints []string, topN int) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	if topN <= 0 {
		topN = DefaultTopCandidates
	}
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	best := candidates[0]
	best.Score = Score(title, best.Name, best.Meta, platformHints)
	for _, c := range candidates[1:] {
		c.Score = Score(title, c.Name, c.Meta, platformHints)
		if beats(c, best) {
			best = c
		}
	}
	return best, true
}

func beats(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	return a.ExternalID < b.ExternalID
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		set[tok] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
