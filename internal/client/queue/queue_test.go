package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/client/worker"
	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []string
	fail      map[string]bool
	failAll   bool
	block     chan struct{}
	entered   chan struct{}
}

func (f *fakeDeliverer) DeliverMutation(ctx context.Context, item models.MutationQueueItem) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.fail[item.ID] {
		return errors.New("unavailable")
	}
	f.delivered = append(f.delivered, item.ID)
	return nil
}

func (f *fakeDeliverer) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

type fakeOnline struct{ v atomic.Bool }

func (f *fakeOnline) IsOnline() bool { return f.v.Load() }

type recordingRunner struct {
	mu   sync.Mutex
	jobs []string
	fns  []worker.Job
}

func (r *recordingRunner) Go(name string, job worker.Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, name)
	r.fns = append(r.fns, job)
	return true
}

type fakeRetry struct {
	delays []time.Duration
	fn     func()
}

func (f *fakeRetry) ScheduleRetry(delay time.Duration, fn func()) {
	f.delays = append(f.delays, delay)
	f.fn = fn
}

type fixture struct {
	q      *Queue
	store  *storage.MemoryStore
	del    *fakeDeliverer
	online *fakeOnline
	runner *recordingRunner
	retry  *fakeRetry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  storage.NewMemoryStore(),
		del:    &fakeDeliverer{fail: map[string]bool{}},
		online: &fakeOnline{},
		runner: &recordingRunner{},
		retry:  &fakeRetry{},
	}
	f.q = New(f.store, f.del, f.online, f.runner, f.retry,
		Config{RetryDelay: 5 * time.Second, RequestTimeout: time.Second}, logging.Nop())
	return f
}

func (f *fixture) enqueue(t *testing.T, id string) string {
	t.Helper()
	qid, err := f.q.Enqueue(context.Background(), models.EntityPrayerSession, models.OperationCreate,
		models.PrayerSession{ID: id, Date: 1})
	require.NoError(t, err)
	return qid
}

func (f *fixture) persisted(t *testing.T) []models.MutationQueueItem {
	t.Helper()
	raw, err := f.store.Get(context.Background(), storage.KeyMutationQueue)
	require.NoError(t, err)
	var items []models.MutationQueueItem
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestEnqueue_PersistsFullListAndBuildsID(t *testing.T) {
	f := newFixture(t)
	a := f.enqueue(t, "p1")
	b := f.enqueue(t, "p2")

	require.Regexp(t, `^prayerSession_\d+_[0-9a-f]{8}$`, a)
	items := f.persisted(t)
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0].ID)
	assert.Equal(t, b, items[1].ID)
	assert.JSONEq(t, `{"id":"p1","date":1,"durationSeconds":0}`, string(items[0].Payload))
	assert.Empty(t, f.runner.jobs, "offline enqueue must not drain")
}

func TestEnqueue_OnlineSubmitsDrain(t *testing.T) {
	f := newFixture(t)
	f.online.v.Store(true)
	f.enqueue(t, "p1")
	require.Equal(t, []string{"drain"}, f.runner.jobs)

	require.NoError(t, f.runner.fns[0](context.Background()))
	require.Len(t, f.del.got(), 1)
	require.Zero(t, f.q.Len())
}

func TestEnqueue_RejectsUnknownEntity(t *testing.T) {
	f := newFixture(t)
	_, err := f.q.Enqueue(context.Background(), "habit", models.OperationCreate, json.RawMessage(`{}`))
	require.ErrorIs(t, err, common.ErrorUnknownEntityType)
	require.Zero(t, f.q.Len())
}

func TestDrain_DeliversInFIFOOrder(t *testing.T) {
	f := newFixture(t)
	ids := []string{f.enqueue(t, "a"), f.enqueue(t, "b"), f.enqueue(t, "c")}
	f.online.v.Store(true)

	res := f.q.Drain(context.Background())
	require.Equal(t, DrainResult{Delivered: 3}, res)
	require.Equal(t, ids, f.del.got())
	require.Empty(t, f.persisted(t))
	require.Empty(t, f.retry.delays)
}

func TestDrain_OfflineIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.enqueue(t, "a")

	res := f.q.Drain(context.Background())
	require.True(t, res.Skipped)
	require.Equal(t, 1, res.Remaining)
	require.Empty(t, f.del.got())
}

func TestDrain_FailureKeepsOrderAndArmsRetry(t *testing.T) {
	f := newFixture(t)
	a := f.enqueue(t, "a")
	b := f.enqueue(t, "b")
	f.del.fail[a] = true
	f.online.v.Store(true)

	res := f.q.Drain(context.Background())
	require.Equal(t, DrainResult{Delivered: 1, Failed: 1, Remaining: 1}, res)
	require.Equal(t, []string{b}, f.del.got())

	items := f.q.Items()
	require.Len(t, items, 1)
	require.Equal(t, a, items[0].ID)
	require.Equal(t, 1, items[0].RetryCount)
	require.Equal(t, 1, f.persisted(t)[0].RetryCount)

	require.Equal(t, []time.Duration{5 * time.Second}, f.retry.delays)
	f.retry.fn()
	require.Equal(t, []string{"drain-retry"}, f.runner.jobs)
}

func TestDrain_DropsAfterMaxRetries(t *testing.T) {
	f := newFixture(t)
	f.enqueue(t, "a")
	f.del.failAll = true
	f.online.v.Store(true)

	for i := 1; i < MaxRetries; i++ {
		res := f.q.Drain(context.Background())
		require.Equal(t, 1, res.Remaining)
		require.Equal(t, i, f.q.Items()[0].RetryCount)
	}

	res := f.q.Drain(context.Background())
	require.Equal(t, 1, res.Dropped)
	require.Zero(t, res.Remaining)
	require.Zero(t, f.q.Len())
	require.Empty(t, f.persisted(t))
	require.Len(t, f.retry.delays, MaxRetries-1, "no retry once the queue is empty")
}

func TestDrain_OverlappingCallIsNoop(t *testing.T) {
	f := newFixture(t)
	f.enqueue(t, "a")
	f.online.v.Store(true)
	f.del.block = make(chan struct{})
	f.del.entered = make(chan struct{}, 1)

	done := make(chan DrainResult)
	go func() { done <- f.q.Drain(context.Background()) }()
	<-f.del.entered

	second := f.q.Drain(context.Background())
	require.True(t, second.Skipped)

	close(f.del.block)
	first := <-done
	require.Equal(t, 1, first.Delivered)
	require.Len(t, f.del.got(), 1)
}

func TestDrain_CancelledContextDoesNotBumpRetries(t *testing.T) {
	f := newFixture(t)
	f.enqueue(t, "a")
	f.online.v.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.q.Drain(ctx)
	require.Zero(t, res.Failed)
	require.Zero(t, f.q.Items()[0].RetryCount)
	require.Empty(t, f.retry.delays)
}

func TestLoad_RestoresPersistedQueue(t *testing.T) {
	f := newFixture(t)
	a := f.enqueue(t, "a")
	b := f.enqueue(t, "b")

	restored := New(f.store, f.del, f.online, f.runner, nil, Config{RequestTimeout: time.Second}, logging.Nop())
	require.NoError(t, restored.Load(context.Background()))

	items := restored.Items()
	require.Len(t, items, 2)
	require.Equal(t, a, items[0].ID)
	require.Equal(t, b, items[1].ID)
}

func TestLoad_CorruptData(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), storage.KeyMutationQueue, []byte("{")))
	require.ErrorContains(t, f.q.Load(context.Background()), "decode queue")
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	f.enqueue(t, "a")
	require.NoError(t, f.q.Clear(context.Background()))
	require.Zero(t, f.q.Len())

	raw, err := f.store.Get(context.Background(), storage.KeyMutationQueue)
	require.NoError(t, err)
	require.Nil(t, raw)
}
