package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
)

// runParallel fans tasks out over the worker pool. Cancellation is checked
// at every task boundary so in-flight tasks finish but no new ones start.
func (s *Scheduler) runParallel(ctx context.Context, tasks []*Task) Result {
	work := make(chan *Task)
	var wg sync.WaitGroup
	var done atomic.Int64

	workers := s.cfg.Run.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range work {
				s.process(ctx, task, nil)
				s.events.Progress(int(done.Add(1)), len(tasks))
			}
		}()
	}

feed:
	for _, task := range tasks {
		if s.cancelled.Load() || ctx.Err() != nil {
			break feed
		}
		select {
		case work <- task:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	// Tasks never fed to a worker stay pending and count as skipped.
	for _, task := range tasks {
		if task.Status == StatusPending {
			s.finish(task, StatusSkipped, "", Wrap(ErrCancelled, task.Title.Cleaned, "run", "", nil))
		}
	}

	return tally(tasks, s.cancelled.Load() || ctx.Err() != nil)
}
