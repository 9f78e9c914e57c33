package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/client"
	"github.com/dmitrijs2005/habitkeeper/internal/client/config"
	"github.com/dmitrijs2005/habitkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/habitkeeper/internal/client/queue"
	"github.com/dmitrijs2005/habitkeeper/internal/client/scheduler"
	"github.com/dmitrijs2005/habitkeeper/internal/client/services"
	"github.com/dmitrijs2005/habitkeeper/internal/client/state"
	"github.com/dmitrijs2005/habitkeeper/internal/client/storage"
	"github.com/dmitrijs2005/habitkeeper/internal/client/syncengine"
	"github.com/dmitrijs2005/habitkeeper/internal/client/worker"
	"github.com/dmitrijs2005/habitkeeper/internal/filex"
	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

type habitRecorder interface {
	LogPrayer(ctx context.Context, duration time.Duration, kind, notes string) (models.PrayerSession, error)
	LogReading(ctx context.Context, book string, chapter, verses int, duration time.Duration) (models.BibleSession, error)
	LogMeditation(ctx context.Context, duration time.Duration, technique string) (models.MeditationSession, error)
	RecordScore(ctx context.Context, game string, score int) (models.GameScore, error)
	SetProfile(ctx context.Context, displayName, timezone string) error
	SetPlan(ctx context.Context, prayerMinutes, readingChapters, meditationMinutes int) error
	Delete(ctx context.Context, entityType models.EntityType, id string) error
	Data() models.AppData
}

type syncer interface {
	Start(ctx context.Context)
	Stop()
	Reset(ctx context.Context) error
	ForceSync(ctx context.Context) syncengine.SyncResult
	Status() syncengine.Status
	LastSync() int64
	LastResult() (syncengine.SyncResult, bool)
	PendingCount() int
	IsOnline() bool
}

// clearer is implemented by the queue and the state store.
type clearer interface {
	Clear(ctx context.Context) error
}

type pendingQueue interface {
	clearer
	Drain(ctx context.Context) queue.DrainResult
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	habits      habitRecorder
	engine      syncer
	queue       pendingQueue
	state       clearer
	monitor     *connectivity.Monitor
	runner      *worker.Runner
	db          *sql.DB
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens local storage, restores the queue and state, and wires the
// sync stack. ctx bounds every background job the app starts.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	kv, db, err := storage.OpenSQLite(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewHabitKeeperClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := services.NewAuthService(apiClient, kv)
	monitor := connectivity.NewMonitor(apiClient, c.RequestTimeout, logger)
	runner := worker.NewRunner(ctx, logger)
	sched := scheduler.New(c.SyncInterval, logger)

	st := state.NewStore(kv)
	q := queue.New(kv, apiClient, monitor, runner, sched,
		queue.Config{RetryDelay: c.RetryDelay, RequestTimeout: c.RequestTimeout}, logger)
	engine := syncengine.New(syncengine.Deps{
		Transport:      apiClient,
		State:          st,
		KV:             kv,
		Queue:          q,
		Connectivity:   monitor,
		Session:        auth,
		Scheduler:      sched,
		Runner:         runner,
		RequestTimeout: c.RequestTimeout,
		Logger:         logger,
	})

	a := &App{
		config:      c,
		logger:      logger,
		authService: auth,
		habits:      services.NewHabitService(st, q),
		engine:      engine,
		queue:       q,
		state:       st,
		monitor:     monitor,
		runner:      runner,
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	err = errors.Join(st.Load(ctx), q.Load(ctx), engine.Load(ctx))
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Run starts the connectivity watcher and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	a.runner.Go("connectivity", func(ctx context.Context) error {
		a.monitor.Watch(ctx, a.config.OnlineCheckInterval)
		return nil
	})

	fmt.Fprintln(a.out, "Welcome to HabitKeeper (type 'help' for commands)")
	if err := a.Login(ctx); err != nil {
		printlnFn("Error:", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops background work and releases resources. Pending queue items
// stay persisted and are delivered on the next run.
func (a *App) Close(ctx context.Context) error {
	if a.engine != nil {
		a.engine.Stop()
	}
	var errs []error
	if a.runner != nil {
		errs = append(errs, a.runner.Close())
	}
	if a.authService != nil {
		errs = append(errs, a.authService.Close(ctx))
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.authService != nil && a.authService.UserID() != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = a.authService.Username() + " "
	}
	if a.engine.IsOnline() {
		s += "online"
	} else {
		s += "offline"
	}
	if n := a.engine.PendingCount(); n > 0 {
		s += fmt.Sprintf(", %d pending", n)
	}
	return fmt.Sprintf("(%s)", s)
}
