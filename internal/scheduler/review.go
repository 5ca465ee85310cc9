package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	reviewNoArt        = "no_art"
	reviewComposeError = "compose_error"
	reviewOffCenter    = "offcenter"
)

// reviewDeviation reports how far the content centroid sat from center on
// each axis.
type reviewDeviation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// reviewRecord is the durable diagnostic for one failed or suspicious task.
type reviewRecord struct {
	Title     string           `json:"title"`
	Platform  string           `json:"platform"`
	Kind      string           `json:"kind"`
	Error     string           `json:"error,omitempty"`
	Providers []string         `json:"providers_tried,omitempty"`
	SourceTag string           `json:"source_tag,omitempty"`
	Deviation *reviewDeviation `json:"deviation,omitempty"`
	RunID     string           `json:"run_id"`
	Timestamp string           `json:"timestamp"`
}

// writeReview persists a sidecar as <slug>__<kind>.json in the review
// directory. Failures to write are returned so the caller can log them;
// they never fail the task further.
func writeReview(reviewDir, slug string, rec reviewRecord) error {
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return fmt.Errorf("create review directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal review record: %w", err)
	}
	path := filepath.Join(reviewDir, fmt.Sprintf("%s__%s.json", slug, rec.Kind))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write review record: %w", err)
	}
	return nil
}
