// Package app wires configuration, storage, services and the HTTP router
// into a runnable sheetmap server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"sheetmap/internal/api"
	"sheetmap/internal/blobstore"
	"sheetmap/internal/config"
	"sheetmap/internal/db"
	"sheetmap/internal/db/pgstore"
	"sheetmap/internal/db/repository"
	"sheetmap/internal/domain"
	"sheetmap/internal/middleware"
	"sheetmap/internal/service"
	"sheetmap/internal/ui"
)

// readPoolSize is the number of SQLite read connections.
const readPoolSize = 4

// App holds the fully-wired application.
type App struct {
	Services api.Services
	Router   http.Handler

	meta    *db.Pair
	pg      *sqlx.DB
	closers []io.Closer
}

// New opens the metadata database, selects the blob backend named by
// cfg.Backend, builds the services and the router. The audit log always
// lives in the SQLite metadata database. ctx bounds background work such as
// the rate limiter's janitor.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	meta, err := db.OpenPair(cfg.MetaDBPath, readPoolSize)
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	a := &App{meta: meta}

	if err := db.Migrate(meta.Write); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("migrate metadata db: %w", err)
	}

	blobs, err := a.openBlobs(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("blob store ready", "backend", cfg.Backend)

	auditRepo := repository.NewAuditRepo(meta.Write)
	svcLogger := logger.With("component", "service")

	rules, err := service.NewRuleService(blobs, auditRepo, svcLogger, cfg.DefaultRulesPath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("default rules: %w", err)
	}

	a.Services = api.Services{
		Datasets:      service.NewDatasetService(blobs, auditRepo, svcLogger),
		Mappings:      service.NewMappingService(blobs, auditRepo, svcLogger, cfg.WriteRetries),
		Lookups:       service.NewLookupService(blobs, auditRepo, svcLogger, cfg.WriteRetries),
		DefaultFields: service.NewDefaultFieldsService(blobs, auditRepo, svcLogger),
		Rules:         rules,
		Audit:         service.NewAuditService(auditRepo),
	}

	if err := seed(ctx, a.Services, logger); err != nil {
		_ = a.Close()
		return nil, err
	}

	validator, err := middleware.NewValidator(ctx, cfg.Auth)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	apiHandler := api.NewHandler(a.Services, a.health, cfg.MaxUploadBytes, logger.With("component", "api"))
	uiHandler := ui.NewHandler(a.Services.Datasets, a.Services.Mappings, a.Services.Lookups, a.Services.Rules)
	uiHandler.Production = cfg.IsProduction()
	uiHandler.AuthEnabled = cfg.Auth.Enabled()

	a.Router = NewRouter(ctx, RouterConfig{
		API:  apiHandler,
		UI:   uiHandler,
		Auth: middleware.NewAuthenticator(validator, cfg.Auth, logger.With("component", "auth")),
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return a, nil
}

func (a *App) openBlobs(ctx context.Context, cfg *config.Config) (domain.BlobRepository, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.pg = pg
		a.closers = append(a.closers, pg)
		return pgstore.NewBlobRepo(pg), nil
	case config.BackendObject:
		store, err := blobstore.New(ctx, blobstore.Config{
			Location: cfg.BlobLocation,
			S3: blobstore.S3Config{
				KeyID:    cfg.S3KeyID,
				Secret:   cfg.S3Secret,
				Endpoint: cfg.S3Endpoint,
				Region:   cfg.S3Region,
				URLStyle: cfg.S3URLStyle,
			},
			GCSKeyFile:       cfg.GCSKeyFile,
			AzureAccountName: cfg.AzureAccount,
			AzureAccountKey:  cfg.AzureAccountKey,
		})
		if err != nil {
			return nil, fmt.Errorf("open object store: %w", err)
		}
		if c, ok := store.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
		return store, nil
	default:
		return repository.NewBlobRepo(a.meta.Write, a.meta.Read), nil
	}
}

// health pings the stores and reports the metadata schema version.
func (a *App) health(ctx context.Context) (int64, error) {
	if err := a.meta.Read.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("metadata db: %w", err)
	}
	if a.pg != nil {
		if err := a.pg.PingContext(ctx); err != nil {
			return 0, fmt.Errorf("postgres: %w", err)
		}
	}
	return db.SchemaVersion(a.meta.Read)
}

// Close releases every store the app opened.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	if a.meta != nil {
		errs = append(errs, a.meta.Close())
		a.meta = nil
	}
	return errors.Join(errs...)
}
