package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks tasks for which no enabled provider had artwork.
	ErrNotFound = errors.New("artwork not found")
	// ErrProvider marks failures inside a single provider.
	ErrProvider = errors.New("provider error")
	// ErrCompose marks failures in the compositing pipeline.
	ErrCompose = errors.New("compose error")
	// ErrCancelled marks tasks abandoned because the run was cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// Wrap builds an error message that includes task context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, title, operation, message string, err error) error {
	detail := buildDetail(title, operation, message)
	if marker == nil {
		marker = ErrProvider
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// reviewKind maps a task error to the review sidecar written for it, or ""
// when no sidecar applies.
func reviewKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return reviewNoArt
	case errors.Is(err, ErrCompose):
		return reviewComposeError
	default:
		return ""
	}
}

func buildDetail(title, operation, message string) string {
	parts := make([]string, 0, 3)
	if title = strings.TrimSpace(title); title != "" {
		parts = append(parts, title)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "task failure"
	}
	return strings.Join(parts, ": ")
}
