package titles

import "strings"

func searchVariants(cleaned, normalized string) []string {
	var variants []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		variants = appendUnique(variants, v)
	}

	add(cleaned)
	if !strings.EqualFold(normalized, cleaned) {
		add(normalized)
	}
	if idx := strings.Index(cleaned, ":"); idx > 0 {
		add(cleaned[:idx])
	}
	if idx := strings.Index(cleaned, " - "); idx > 0 {
		add(cleaned[:idx])
	}
	for _, swap := range romanSwaps {
		if swap.pattern.MatchString(cleaned) {
			add(swap.pattern.ReplaceAllString(cleaned, swap.arabic))
		}
	}
	return variants
}

// appendUnique preserves first-occurrence order with case-insensitive dedup.
func appendUnique(variants []string, candidate string) []string {
	for _, existing := range variants {
		if strings.EqualFold(existing, candidate) {
			return variants
		}
	}
	return append(variants, candidate)
}
