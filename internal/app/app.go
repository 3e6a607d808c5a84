// Package app assembles the trainer services from the effective configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/trainer/internal/blank"
	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/config"
	"github.com/felixgeelhaar/trainer/internal/exercise"
	"github.com/felixgeelhaar/trainer/internal/queue"
	"github.com/felixgeelhaar/trainer/internal/session"
	"github.com/felixgeelhaar/trainer/internal/source"
	"github.com/felixgeelhaar/trainer/internal/storage/postgres"
	"github.com/felixgeelhaar/trainer/internal/storage/sqlite"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
)

// Options tune how the services are assembled
type Options struct {
	// Dir is the trainer home directory (~/.trainer)
	Dir string

	// Seed fixes blank selection when non-zero
	Seed uint64

	// Queue connects to RabbitMQ when a URL is configured
	Queue bool

	Logger *slog.Logger
}

// App holds the wired services and the resources behind them
type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Exercises *exercise.Service
	Sessions  *session.Service

	conn    *queue.Connection
	closers []func() error
	logger  *slog.Logger
}

// New wires catalog, source, generator, storage and publishers.
// Close releases everything New opened, also when New fails halfway.
func New(ctx context.Context, cfg *config.Config, opts Options) (a *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a = &App{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.Catalog = catalog.Default()
	if cfg.CatalogFile != "" {
		if err := a.Catalog.LoadFile(cfg.CatalogFile); err != nil {
			return a, fmt.Errorf("load catalog: %w", err)
		}
	}

	genOpts := []blank.Option{blank.WithLogger(logger)}
	if opts.Seed != 0 {
		genOpts = append(genOpts, blank.WithSource(blank.NewLockedSource(opts.Seed)))
	}
	loader := source.NewLoader(a.fetcher(), a.Catalog, logger)
	a.Exercises = exercise.NewService(a.Catalog, loader, blank.NewGenerator(genOpts...), logger)

	store, publishers, err := a.storage(ctx, opts.Dir)
	if err != nil {
		return a, err
	}

	if opts.Queue && cfg.RabbitMQURL != "" {
		conn, err := queue.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			return a, fmt.Errorf("connect queue: %w", err)
		}
		a.conn = conn
		a.closers = append(a.closers, conn.Close)
		publishers = append(publishers, queue.NewEventPublisher(conn))
	}

	a.Sessions = session.NewService(store, a.Catalog, a.Exercises,
		session.WithPublisher(publishers),
		session.WithLogger(logger))

	logger.Debug("services ready",
		"exercises", a.Catalog.Len(),
		"storage", cfg.StorageDriver,
		"queue", a.conn != nil)
	return a, nil
}

func (a *App) fetcher() source.Fetcher {
	if a.Config.ExercisesURL == "" {
		return source.NewDirFetcher(a.Config.ExercisesPath)
	}

	f := source.NewHTTPFetcher(source.HTTPConfig{
		BaseURL:       a.Config.ExercisesURL,
		MaxConcurrent: a.Config.MaxConcurrent,
		RatePerSecond: int(a.Config.RatePerSecond),
		Logger:        a.logger,
	})
	a.closers = append(a.closers, f.Close)
	return f
}

func (a *App) storage(ctx context.Context, dir string) (session.Store, session.MultiPublisher, error) {
	switch a.Config.StorageDriver {
	case DriverPostgres:
		pool, err := postgres.Connect(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		store := postgres.NewSessionStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return store, session.MultiPublisher{}, nil

	case DriverFile:
		store, err := session.NewFileStore(filepath.Join(dir, "sessions"))
		if err != nil {
			return nil, nil, fmt.Errorf("create session store: %w", err)
		}
		return store, session.MultiPublisher{}, nil

	default:
		db, err := sqlite.Open(a.Config.ResolveSQLitePath(dir))
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)

		if err := db.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewSessionStore(db), session.MultiPublisher{sqlite.NewEventLog(db)}, nil
	}
}

// Queue returns the RabbitMQ connection, or nil when none is configured
func (a *App) Queue() *queue.Connection {
	return a.conn
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
