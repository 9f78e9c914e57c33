// Package syncengine reconciles local application data with the user's
// snapshot on the server.
//
// A full sync pulls first (merging a newer remote snapshot into local state
// record by record) and then pushes the merged state back as the new
// snapshot. Only one sync runs at a time; an overlapping request fails fast
// with ErrAlreadyInProgress and makes no network calls.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/habitkeeper/internal/client/queue"
	"github.com/dmitrijs2005/habitkeeper/internal/client/state"
	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/client/worker"
	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/merge"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

type Transport interface {
	PutSnapshot(ctx context.Context, snap models.CloudSnapshot) error
	GetSnapshot(ctx context.Context) (*models.CloudSnapshot, error)
}

type Session interface {
	UserID() string
}

type Connectivity interface {
	IsOnline() bool
	Subscribe(fn connectivity.Listener) func()
}

type Periodic interface {
	StartPeriodic(ctx context.Context, fn func(ctx context.Context))
	Stop()
}

type Submitter interface {
	Go(name string, job worker.Job) bool
}

type Deps struct {
	Transport      Transport
	State          *state.Store
	KV             storage.Store
	Queue          *queue.Queue
	Connectivity   Connectivity
	Session        Session
	Scheduler      Periodic
	Runner         Submitter
	RequestTimeout time.Duration
	Logger         logging.Logger
}

type Engine struct {
	transport      Transport
	state          *state.Store
	kv             storage.Store
	queue          *queue.Queue
	conn           Connectivity
	session        Session
	scheduler      Periodic
	runner         Submitter
	requestTimeout time.Duration
	logger         logging.Logger
	now            func() time.Time

	mu          sync.Mutex
	status      Status
	lastSync    int64
	lastResult  *SyncResult
	unsubscribe func()
}

func New(d Deps) *Engine {
	return &Engine{
		transport:      d.Transport,
		state:          d.State,
		kv:             d.KV,
		queue:          d.Queue,
		conn:           d.Connectivity,
		session:        d.Session,
		scheduler:      d.Scheduler,
		runner:         d.Runner,
		requestTimeout: d.RequestTimeout,
		logger:         d.Logger.With("component", "sync"),
		now:            time.Now,
		status:         StatusIdle,
	}
}

// Load restores the persisted last sync time.
func (e *Engine) Load(ctx context.Context) error {
	raw, err := e.kv.Get(ctx, storage.KeyLastSync)
	if err != nil {
		return fmt.Errorf("load last sync: %w", err)
	}
	var ms int64
	if len(raw) > 0 {
		ms, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("decode last sync: %w", err)
		}
	}

	e.mu.Lock()
	e.lastSync = ms
	e.mu.Unlock()
	return nil
}

// Start hooks the engine to connectivity changes and the periodic timer.
// If already online, an initial drain and sync are started right away.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.unsubscribe != nil {
		e.mu.Unlock()
		return
	}
	e.unsubscribe = e.conn.Subscribe(func(online bool) {
		if online {
			e.submitCatchUp()
		}
	})
	e.mu.Unlock()

	e.scheduler.StartPeriodic(ctx, e.periodic)

	if e.conn.IsOnline() {
		e.submitCatchUp()
	}
}

// Stop detaches from connectivity and tears down the timers.
func (e *Engine) Stop() {
	e.mu.Lock()
	unsub := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	e.scheduler.Stop()
}

// submitCatchUp drains the queue and then runs a full sync on the worker.
func (e *Engine) submitCatchUp() {
	e.runner.Go("online-sync", func(ctx context.Context) error {
		e.queue.Drain(ctx)
		if res := e.SyncData(ctx); !res.Success {
			return res.Err
		}
		return nil
	})
}

func (e *Engine) periodic(ctx context.Context) {
	if !e.conn.IsOnline() || e.session.UserID() == "" {
		return
	}
	res := e.SyncData(ctx)
	if !res.Success && !errors.Is(res.Err, ErrAlreadyInProgress) {
		e.logger.Warn(ctx, "periodic sync failed", "error", res.Err)
	}
}

// SyncToCloud uploads local state as the new remote snapshot.
func (e *Engine) SyncToCloud(ctx context.Context) SyncResult {
	return e.run(ctx, "push", e.push)
}

// LoadFromCloud merges a newer remote snapshot into local state.
func (e *Engine) LoadFromCloud(ctx context.Context) SyncResult {
	return e.run(ctx, "pull", e.pull)
}

// SyncData pulls and then pushes. A failed pull skips the push.
func (e *Engine) SyncData(ctx context.Context) SyncResult {
	return e.run(ctx, "sync", func(ctx context.Context) error {
		if err := e.pull(ctx); err != nil {
			return err
		}
		return e.push(ctx)
	})
}

// ForceSync is SyncData on user request.
func (e *Engine) ForceSync(ctx context.Context) SyncResult {
	return e.SyncData(ctx)
}

func (e *Engine) run(ctx context.Context, op string, fn func(ctx context.Context) error) SyncResult {
	if err := e.begin(); err != nil {
		e.logger.Debug(ctx, "sync rejected", "op", op, "error", err)
		return e.finish(ctx, op, err, false)
	}
	return e.finish(ctx, op, fn(ctx), true)
}

func (e *Engine) begin() error {
	if !e.conn.IsOnline() {
		return ErrNoConnection
	}
	if e.session.UserID() == "" {
		return ErrNotAuthenticated
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning {
		return ErrAlreadyInProgress
	}
	e.status = StatusRunning
	return nil
}

func (e *Engine) finish(ctx context.Context, op string, err error, started bool) SyncResult {
	at := e.now()
	var res SyncResult
	if err != nil {
		res = failed(err, at)
	} else {
		res = succeeded(at)
	}

	e.mu.Lock()
	if started {
		e.status = StatusIdle
	}
	if !errors.Is(err, ErrAlreadyInProgress) {
		e.lastResult = &res
	}
	e.mu.Unlock()

	if started {
		if err != nil {
			e.logger.Warn(ctx, "sync failed", "op", op, "error", err)
		} else {
			e.logger.Info(ctx, "sync finished", "op", op)
		}
	}
	return res
}

func (e *Engine) pull(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	remote, err := e.transport.GetSnapshot(cctx)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: get snapshot: %w", ErrTransport, err)
	}
	if remote == nil {
		return nil
	}

	if remote.LastSync <= e.LastSync() {
		e.logger.Debug(ctx, "remote snapshot not newer", "remote", remote.LastSync)
		return nil
	}

	err = e.state.Update(ctx, func(d *models.AppData) error {
		*d = merge.Snapshot(*d, remote.AppData)
		return nil
	})
	if err != nil {
		return err
	}

	return e.setLastSync(ctx, remote.LastSync)
}

func (e *Engine) push(ctx context.Context) error {
	now := e.now().UnixMilli()
	snap := models.CloudSnapshot{AppData: e.state.Snapshot(), LastSync: now}

	cctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	err := e.transport.PutSnapshot(cctx, snap)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: put snapshot: %w", ErrTransport, err)
	}

	return e.setLastSync(ctx, now)
}

func (e *Engine) setLastSync(ctx context.Context, ms int64) error {
	e.mu.Lock()
	e.lastSync = ms
	e.mu.Unlock()

	if err := e.kv.Set(ctx, storage.KeyLastSync, []byte(strconv.FormatInt(ms, 10))); err != nil {
		return fmt.Errorf("persist last sync: %w", err)
	}
	return nil
}

// Reset forgets the last sync time, e.g. on sign-out.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.lastSync = 0
	e.lastResult = nil
	e.mu.Unlock()
	return e.kv.Delete(ctx, storage.KeyLastSync)
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// LastSync is the epoch-millis of the last successful exchange, 0 if none.
func (e *Engine) LastSync() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

func (e *Engine) LastResult() (SyncResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastResult == nil {
		return SyncResult{}, false
	}
	return *e.lastResult, true
}

func (e *Engine) PendingCount() int {
	return e.queue.Len()
}

func (e *Engine) IsOnline() bool {
	return e.conn.IsOnline()
}
