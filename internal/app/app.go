// Package app wires configuration, logging, storage, services, and the
// HTTP transport into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"shoppulse/internal/config"
	"shoppulse/internal/errors"
	"shoppulse/internal/infrastructure"
	customMiddleware "shoppulse/internal/middleware"
	"shoppulse/internal/services"
	"shoppulse/internal/store"
	transporthttp "shoppulse/internal/transport/http"
)

// Version is the application version, overridable at build time with
// -ldflags "-X shoppulse/internal/app.Version=...".
var Version = "dev"

// Application holds all application dependencies.
type Application struct {
	Config       *config.Config
	Logger       *slog.Logger
	Metrics      *infrastructure.Metrics
	Records      store.RecordStore
	Logs         store.LogStore
	DataService  *services.DataService
	ErrorHandler *errors.ErrorHandler
	Router       chi.Router
	Server       *http.Server
}

// NewApplication creates a fully wired application instance.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires an application around an already loaded
// configuration. Used by tests and by the batch CLI.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	if err := app.setupStores(); err != nil {
		return nil, err
	}

	app.DataService = services.NewDataService(cfg, logger, app.Records, app.Logs, app.Metrics)
	app.ErrorHandler = errors.NewErrorHandler(logger, cfg.Logging.Development)

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupStores constructs the persistence backend selected by configuration.
func (a *Application) setupStores() error {
	switch a.Config.Storage.Backend {
	case "file":
		records, err := store.NewFileRecordStore(filepath.Join(a.Config.Storage.DataDir, "records.json"))
		if err != nil {
			return fmt.Errorf("open record store: %w", err)
		}
		logs, err := store.NewFileLogStore(filepath.Join(a.Config.Storage.DataDir, "logs.json"))
		if err != nil {
			return fmt.Errorf("open log store: %w", err)
		}
		a.Records = records
		a.Logs = logs
	default:
		a.Records = store.NewMemoryRecordStore()
		a.Logs = store.NewMemoryLogStore()
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	dataHandler := transporthttp.NewDataHandler(a.DataService, a.Logger, a.ErrorHandler, a.Config.Server.MaxUploadBytes)
	analyticsHandler := transporthttp.NewAnalyticsHandler(a.DataService, a.Logger, a.ErrorHandler)
	logsHandler := transporthttp.NewLogsHandler(a.DataService, a.Logger, a.ErrorHandler)
	healthHandler := transporthttp.NewHealthHandler(Version)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/data", dataHandler.Routes())
		r.Mount("/analytics", analyticsHandler.Routes())
		r.Mount("/logs", logsHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	// Metrics endpoint stays outside the middleware chain so scrapes are
	// never rate limited.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled
// or the server fails. Shutdown drains in-flight requests within the
// configured shutdown timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "starting application",
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("storage_backend", a.Config.Storage.Backend),
		slog.String("dedup_key", a.Config.Ingestion.DedupKey))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()

	if closeErr := infrastructure.CloseLogFile(); closeErr != nil {
		a.Logger.Error("closing log file", slog.String("error", closeErr.Error()))
	}
	return err
}
