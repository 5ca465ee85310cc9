package scheduler

import (
	"context"

	"gridsmith/internal/providers"
)

// Action is the human's answer to a selection request.
type Action int

const (
	// ActionSelect picks the option at Decision.Index.
	ActionSelect Action = iota
	// ActionSkip abandons this title and moves on.
	ActionSkip
	// ActionCancelAll aborts the remainder of the run.
	ActionCancelAll
)

// Decision is one answer to one selection request.
type Decision struct {
	Action Action
	Index  int
}

// Selection is a pending request waiting for a human decision. Answer must
// be called exactly once.
type Selection struct {
	Title    string
	Platform string
	Options  []providers.Option

	answer chan Decision
}

// Answer resolves the request. The worker blocked in Prompt wakes up with
// the decision.
func (s *Selection) Answer(d Decision) {
	s.answer <- d
}

// Bridge is the rendezvous between scheduler workers and the interactive
// front end. Workers block in Prompt; the front end drains Requests and
// answers each one on its own schedule.
type Bridge struct {
	requests chan *Selection
}

// NewBridge creates a bridge. The request channel is unbuffered so a worker
// hands its request directly to the front end.
func NewBridge() *Bridge {
	return &Bridge{requests: make(chan *Selection)}
}

// Requests exposes the pending-selection stream for the front end.
func (b *Bridge) Requests() <-chan *Selection {
	return b.requests
}

// Prompt posts a selection request and blocks until it is answered or the
// context is cancelled.
func (b *Bridge) Prompt(ctx context.Context, title, platform string, options []providers.Option) (Decision, error) {
	sel := &Selection{
		Title:    title,
		Platform: platform,
		Options:  options,
		answer:   make(chan Decision, 1),
	}

	select {
	case b.requests <- sel:
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}

	select {
	case d := <-sel.answer:
		return d, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}
