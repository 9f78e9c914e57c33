// Package scheduler owns the client's two timers: the repeating sync tick
// and the one-shot queue retry.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
)

type Scheduler struct {
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	retry   *time.Timer
	retryID uint64
}

// New returns a scheduler whose periodic job fires every interval.
func New(interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{interval: interval, logger: logger}
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

// StartPeriodic runs fn on every tick until Stop or ctx is done. Ticks are
// serial: a slow fn delays the next one instead of overlapping it. A second
// call while running is a no-op.
func (s *Scheduler) StartPeriodic(ctx context.Context, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()

	s.logger.Debug(ctx, "periodic sync started", "interval", s.interval)
}

// ScheduleRetry arms the one-shot timer, replacing any pending one.
func (s *Scheduler) ScheduleRetry(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retry != nil {
		s.retry.Stop()
	}

	s.retryID++
	id := s.retryID
	s.retry = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.retryID != id {
			s.mu.Unlock()
			return
		}
		s.retry = nil
		s.mu.Unlock()
		fn()
	})
}

// RetryPending reports whether a one-shot retry is armed.
func (s *Scheduler) RetryPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retry != nil
}

// CancelRetry disarms the one-shot timer.
func (s *Scheduler) CancelRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRetryLocked()
}

func (s *Scheduler) cancelRetryLocked() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.retryID++
}

// Stop tears down both timers and waits for an in-flight periodic run.
// The scheduler can be started again afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.cancelRetryLocked()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
