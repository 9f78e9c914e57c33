// Package worker runs fire-and-forget background jobs on a tracked group so
// the application can cancel and wait for them on shutdown.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Job is a unit of background work. A returned error is logged.
type Job func(ctx context.Context) error

type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	group  errgroup.Group
}

func NewRunner(parent context.Context, logger logging.Logger) *Runner {
	ctx, cancel := context.WithCancel(parent)
	return &Runner{ctx: ctx, cancel: cancel, logger: logger}
}

// Go starts job in the background. It reports false once the runner is
// closed.
func (r *Runner) Go(name string, job Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Debug(r.ctx, "job rejected, worker closed", "job", name)
		return false
	}

	r.group.Go(func() error {
		if err := job(r.ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Warn(r.ctx, "background job failed", "job", name, "error", err)
		}
		return nil
	})
	return true
}

// Close cancels running jobs, waits for them and rejects new ones.
// Calling it again is a no-op.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	return r.group.Wait()
}
