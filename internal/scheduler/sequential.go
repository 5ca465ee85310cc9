package scheduler

import (
	"context"
	"time"

	"gridsmith/internal/logging"
	"gridsmith/internal/providers"
)

// prefetchJoinTimeout bounds how long a task waits for its prefetched
// candidate set before fetching inline instead.
const prefetchJoinTimeout = 35 * time.Second

type prefetchResult struct {
	options []providers.Option
	done    chan struct{}
}

// runSequential processes titles one at a time. While the current title
// waits on a human decision, the next title's candidates download in the
// background, so the prompt loop rarely stalls on the network.
func (s *Scheduler) runSequential(ctx context.Context, tasks []*Task) Result {
	var next *prefetchResult

	for i, task := range tasks {
		if s.cancelled.Load() || ctx.Err() != nil {
			break
		}

		var options []providers.Option
		if next != nil {
			options = s.joinPrefetch(ctx, task, next)
		}

		if i+1 < len(tasks) {
			next = s.startPrefetch(ctx, tasks[i+1])
		} else {
			next = nil
		}

		s.process(ctx, task, options)
		s.events.Progress(i+1, len(tasks))
	}

	for _, task := range tasks {
		if task.Status == StatusPending {
			s.finish(task, StatusSkipped, "", Wrap(ErrCancelled, task.Title.Cleaned, "run", "", nil))
		}
	}

	return tally(tasks, s.cancelled.Load() || ctx.Err() != nil)
}

func (s *Scheduler) startPrefetch(ctx context.Context, task *Task) *prefetchResult {
	pf := &prefetchResult{done: make(chan struct{})}
	go func() {
		defer close(pf.done)
		pf.options = s.fetchOptions(ctx, task)
	}()
	return pf
}

// joinPrefetch waits for the background fetch. On timeout the options are
// fetched inline by process; the stray goroutine finishes into the cache,
// so its work is not wasted.
func (s *Scheduler) joinPrefetch(ctx context.Context, task *Task, pf *prefetchResult) []providers.Option {
	timer := time.NewTimer(prefetchJoinTimeout)
	defer timer.Stop()

	select {
	case <-pf.done:
		return pf.options
	case <-timer.C:
		s.logger.Warn("prefetch join timed out", logging.String("title", task.Title.Cleaned))
		return nil
	case <-ctx.Done():
		return nil
	}
}
