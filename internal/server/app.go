// Package server wires the HabitKeeper server: storage backend selection,
// migrations, services and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/server/config"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/habitkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/habitkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/habitkeeper/internal/server/grpc"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	userService     *services.UserService
	snapshotService *services.SnapshotService
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp connects storage for c.SnapshotBackend and builds the services.
// postgres keeps users and snapshots in PostgreSQL; s3 keeps users in
// PostgreSQL and snapshots in object storage; memory keeps both in process.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(slog.LevelInfo)

	app := &App{config: c, logger: logger}

	var rm repomanager.RepositoryManager
	switch c.SnapshotBackend {
	case config.BackendMemory:
		rm = repomanager.NewMemoryRepositoryManager()
	case config.BackendPostgres, config.BackendS3:
		db, err := openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db

		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", c.SnapshotBackend)
	}

	app.userService = services.NewUserService(app.db, rm, c)

	if c.SnapshotBackend == config.BackendS3 {
		repo, err := snapshots.NewS3Repository(ctx, snapshots.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.snapshotService = services.NewSnapshotServiceWithRepository(repo, logger)
	} else {
		app.snapshotService = services.NewSnapshotService(app.db, rm, logger)
	}

	logger.Info(ctx, "storage ready", "backend", c.SnapshotBackend)
	return app, nil
}

// Run serves until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.snapshotService, app.config.SecretKey)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(ctx)
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	if app.db != nil {
		return app.db.Close()
	}
	return nil
}
