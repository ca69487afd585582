// Package app wires repositories, storage and the content pipeline from
// configuration. Both the server and the reprocess command start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/config"
	"folio/internal/domain/repositories"
	contentRepo "folio/internal/domain/repositories/content"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/repository/memory"
	"folio/internal/repository/postgres"
	postgresContent "folio/internal/repository/postgres/content"
	"folio/internal/service/content/assets"
	"folio/internal/service/content/processing"
	"folio/internal/storage/local"
)

// App holds the shared collaborators.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool // nil on memory repositories
	Contents  contentRepo.ContentRepository
	Assets    contentRepo.AssetRepository
	Files     contentRepo.FileStore
	TxManager repositories.TransactionManager
	Processor contentSvc.ContentProcessor
	Tracker   contentSvc.AssetTracker
}

// NewLogger builds the JSON logger, teeing into a log file when LOG_DIR is set.
// The returned close func is never nil.
func NewLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var (
		out     io.Writer = os.Stdout
		closeFn           = func() {}
	)
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closeFn = func() { f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// New connects storage and builds the pipeline. Without DATABASE_URL the
// in-memory repositories are used, which prod refuses.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Processor: processing.NewProcessor(logger),
	}

	if cfg.DatabaseURL == "" {
		if cfg.Environment == "prod" {
			return nil, errors.New("DATABASE_URL is required in prod")
		}
		logger.Warn("DATABASE_URL not set, using in-memory repositories (data is lost on exit)")
		contents := memory.NewContentRepository()
		a.Contents = contents
		a.Assets = memory.NewAssetRepository(contents)
		a.TxManager = memory.NewTransactionManager()
	} else {
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(),
			Logger: logger,
		}
		a.Pool = pool
		a.Contents = postgresContent.NewContentRepository(repoConfig)
		a.Assets = postgresContent.NewAssetRepository(repoConfig)
		a.TxManager = postgres.NewTransactionManager(pool, logger)
	}

	store, err := local.NewStore(cfg.FilesDir, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Files = store
	a.Tracker = assets.NewTracker(a.Assets, a.Contents, store, logger)

	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
