// Package queue is the persistent FIFO of local mutations waiting to reach
// the server.
//
// Every change to the list (enqueue, removal, retry bump) rewrites the whole
// list under storage.KeyMutationQueue. Delivery is at-least-once; the server
// applies items idempotently, so redelivery after a crash is harmless.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/client/worker"
	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

// MaxRetries is the number of failed deliveries after which an item is
// dropped.
const MaxRetries = 3

var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

type Deliverer interface {
	DeliverMutation(ctx context.Context, item models.MutationQueueItem) error
}

type OnlineChecker interface {
	IsOnline() bool
}

type Submitter interface {
	Go(name string, job worker.Job) bool
}

type RetryScheduler interface {
	ScheduleRetry(delay time.Duration, fn func())
}

type Config struct {
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

type Queue struct {
	store     storage.Store
	deliverer Deliverer
	online    OnlineChecker
	runner    Submitter
	retries   RetryScheduler
	cfg       Config
	logger    logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	items    []models.MutationQueueItem
	draining bool
}

func New(store storage.Store, deliverer Deliverer, online OnlineChecker, runner Submitter,
	retries RetryScheduler, cfg Config, logger logging.Logger) *Queue {
	return &Queue{
		store:     store,
		deliverer: deliverer,
		online:    online,
		runner:    runner,
		retries:   retries,
		cfg:       cfg,
		logger:    logger.With("component", "queue"),
		now:       time.Now,
	}
}

// DrainResult summarises one pass.
type DrainResult struct {
	Skipped   bool
	Delivered int
	Failed    int
	Dropped   int
	Remaining int
}

// Load restores the persisted list. Call once at startup.
func (q *Queue) Load(ctx context.Context) error {
	raw, err := q.store.Get(ctx, storage.KeyMutationQueue)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	var items []models.MutationQueueItem
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode queue: %w", err)
		}
	}

	q.mu.Lock()
	q.items = items
	q.mu.Unlock()
	return nil
}

// Enqueue appends a mutation, persists the list and, when online, starts a
// background drain. payload is marshalled to JSON unless it already is a
// json.RawMessage.
func (q *Queue) Enqueue(ctx context.Context, entityType models.EntityType, op models.Operation, payload any) (string, error) {
	raw, err := toRaw(payload)
	if err != nil {
		return "", err
	}

	enqueuedAt := q.now().UnixMilli()
	item := models.MutationQueueItem{
		ID:         models.NewMutationID(entityType, enqueuedAt),
		EntityType: entityType,
		Operation:  op,
		Payload:    raw,
		EnqueuedAt: enqueuedAt,
	}
	if err := item.Validate(); err != nil {
		return "", err
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.persistLocked(ctx)
	q.mu.Unlock()

	q.logger.Debug(ctx, "mutation enqueued", "id", item.ID, "entity", entityType, "op", op)

	if q.online.IsOnline() {
		q.submitDrain("drain")
	}
	return item.ID, nil
}

func toRaw(payload any) (json.RawMessage, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func (q *Queue) submitDrain(name string) {
	q.runner.Go(name, func(ctx context.Context) error {
		q.Drain(ctx)
		return nil
	})
}

// Drain delivers the current items in order. A concurrent call returns
// immediately with Skipped set. Failures never surface as errors: they bump
// RetryCount, and the item is dropped once it reaches MaxRetries.
func (q *Queue) Drain(ctx context.Context) DrainResult {
	if !q.online.IsOnline() {
		return DrainResult{Skipped: true, Remaining: q.Len()}
	}

	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return DrainResult{Skipped: true}
	}
	q.draining = true
	pending := slices.Clone(q.items)
	q.mu.Unlock()

	var res DrainResult
	for _, item := range pending {
		if ctx.Err() != nil {
			break
		}

		dctx, cancel := context.WithTimeout(ctx, q.cfg.RequestTimeout)
		err := q.deliverer.DeliverMutation(dctx, item)
		cancel()

		if err == nil {
			q.remove(ctx, item.ID)
			res.Delivered++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		res.Failed++
		if q.bumpRetry(ctx, item.ID, err) {
			res.Dropped++
		}
	}

	q.mu.Lock()
	q.draining = false
	res.Remaining = len(q.items)
	q.mu.Unlock()

	if res.Remaining > 0 && ctx.Err() == nil {
		q.armRetry()
	}

	q.logger.Info(ctx, "queue drained",
		"delivered", res.Delivered, "failed", res.Failed, "dropped", res.Dropped, "pending", res.Remaining)
	return res
}

func (q *Queue) armRetry() {
	if q.retries == nil {
		return
	}
	q.retries.ScheduleRetry(q.cfg.RetryDelay, func() {
		if q.online.IsOnline() {
			q.submitDrain("drain-retry")
		}
	})
}

func (q *Queue) remove(ctx context.Context, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = slices.DeleteFunc(q.items, func(it models.MutationQueueItem) bool { return it.ID == id })
	q.persistLocked(ctx)
}

// bumpRetry records a failed delivery and reports whether the item was
// dropped.
func (q *Queue) bumpRetry(ctx context.Context, id string, cause error) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.items, func(it models.MutationQueueItem) bool { return it.ID == id })
	if i < 0 {
		return false
	}

	q.items[i].RetryCount++
	dropped := q.items[i].RetryCount >= MaxRetries
	if dropped {
		item := q.items[i]
		q.items = slices.Delete(q.items, i, i+1)
		q.logger.Error(ctx, "mutation dropped",
			"id", item.ID, "entity", item.EntityType, "retries", item.RetryCount,
			"error", fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, cause))
	} else {
		q.logger.Warn(ctx, "mutation delivery failed", "id", id, "retries", q.items[i].RetryCount, "error", cause)
	}

	q.persistLocked(ctx)
	return dropped
}

// persistLocked writes the full list. Storage errors are logged, not
// returned: the in-memory list stays authoritative and the next mutation
// rewrites it.
func (q *Queue) persistLocked(ctx context.Context) {
	b, err := json.Marshal(q.items)
	if err != nil {
		q.logger.Error(ctx, "encode queue", "error", err)
		return
	}
	if err := q.store.Set(ctx, storage.KeyMutationQueue, b); err != nil {
		q.logger.Error(ctx, "persist queue", "error", err)
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the pending items in delivery order.
func (q *Queue) Items() []models.MutationQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Clear empties the queue and its persisted copy, e.g. on sign-out.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
	if err := q.store.Delete(ctx, storage.KeyMutationQueue); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}
