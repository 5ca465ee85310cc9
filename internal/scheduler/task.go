package scheduler

import (
	"gridsmith/internal/config"
	"gridsmith/internal/output"
	"gridsmith/internal/titles"
)

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusPending           Status = "pending"
	StatusFetching          Status = "fetching"
	StatusAwaitingSelection Status = "awaiting_selection"
	StatusComposing         Status = "composing"
	StatusDone              Status = "done"
	StatusFailed            Status = "failed"
	StatusSkipped           Status = "skipped"
)

// Task is one title on one platform.
type Task struct {
	RawName  string
	Title    titles.Title
	Platform config.Platform
	Slug     string
	Status   Status

	// SourceTag records where the chosen artwork came from, once known.
	SourceTag string
	Err       error
}

// NewTask normalizes the raw name and derives the output slug.
func NewTask(rawName string, platform config.Platform) *Task {
	title := titles.Normalize(rawName)
	return &Task{
		RawName:  rawName,
		Title:    title,
		Platform: platform,
		Slug:     output.Slug(title.Cleaned),
		Status:   StatusPending,
	}
}

// Result summarizes a finished run.
type Result struct {
	Completed int
	Total     int
	Errors    int
	Skipped   int
	Cancelled bool
}

// Summary renders the end-of-run line.
func (r Result) Summary() string {
	return summaryLine(r.Completed, r.Total, r.Errors)
}
