// Package logging provides slog construction and shared structured logging
// helpers. All gridsmith packages log through *slog.Logger instances built
// here so field names stay consistent across the pipeline.
package logging
