package match

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Metadata is the opaque key-value blob a provider returns for a candidate.
// Scoring only ever flattens it to text or pulls a release year out of it.
type Metadata map[string]any

var yearRun = regexp.MustCompile(`(\d{4})`)

// Flatten renders every key and value in the blob into one lowercase text
// block for substring matching. Map iteration order is randomized, so keys
// are walked sorted to keep the output deterministic.
func (m Metadata) Flatten() string {
	var b strings.Builder
	flattenValue(&b, m)
	return strings.ToLower(b.String())
}

func flattenValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
	case Metadata:
		flattenMap(b, val)
	case map[string]any:
		flattenMap(b, val)
	case []any:
		for _, item := range val {
			flattenValue(b, item)
		}
	case string:
		writeWord(b, val)
	default:
		writeWord(b, fmt.Sprint(val))
	}
}

func flattenMap(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeWord(b, k)
		flattenValue(b, m[k])
	}
}

func writeWord(b *strings.Builder, word string) {
	if word == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(word)
}

// ReleaseYear extracts a release year from the metadata blob. A numeric
// release_date is a Unix timestamp; a string one is scanned for a 4-digit run.
// Returns 0 when absent.
func (m Metadata) ReleaseYear() int {
	raw, ok := m["release_date"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC().Year()
	case int64:
		return time.Unix(v, 0).UTC().Year()
	case int:
		return time.Unix(int64(v), 0).UTC().Year()
	case string:
		if m := yearRun.FindStringSubmatch(v); m != nil {
			year, _ := strconv.Atoi(m[1])
			return year
		}
	}
	return 0
}
