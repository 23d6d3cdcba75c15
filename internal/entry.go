package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/eliasvk/tracksync/internal/api"
	"github.com/eliasvk/tracksync/internal/events"
	"github.com/eliasvk/tracksync/internal/mcpserver"
	"github.com/eliasvk/tracksync/internal/schedule"
	"github.com/eliasvk/tracksync/internal/syncer"
)

// Run starts the serve daemon: periodic syncs on the configured cron
// spec, a watcher that reconciles daily notes created after their report
// was fetched, and an HTTP API for status, manual triggers, and SSE
// events.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("daily_folder", cfg.Vault.DailyFolder),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Status event broker.
	broker := events.NewBroker()
	defer broker.Close()

	comps, err := buildComponents(cfg, broker, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	// Build API and chi router.
	apiRouter := api.NewRouter(comps.sync, comps.journal, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// Periodic today-sync.
	sched := schedule.New(logger)
	if cfg.Sync.Schedule != "" {
		if err := sched.Add(&todaySyncJob{sync: comps.sync}, cfg.Sync.Schedule); err != nil {
			return fmt.Errorf("schedule sync: %w", err)
		}
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	sched.Start(gCtx)

	// Watch the daily notes folder for late-created notes.
	g.Go(func() error {
		if err := comps.sync.Watch(gCtx, cfg.Vault.Path, comps.resolver); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the stdio MCP server. Logs go to stderr so they cannot
// corrupt the stdio transport.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	comps, err := buildComponents(cfg, events.NewLogSink(logger), logger)
	if err != nil {
		return err
	}
	defer comps.close()

	return mcpserver.New(comps.sync, comps.journal).ServeStdio()
}

// todaySyncJob adapts the orchestrator's today flow to the scheduler.
type todaySyncJob struct {
	sync *syncer.Syncer
}

func (j *todaySyncJob) Name() string { return "sync-today" }

func (j *todaySyncJob) Run(ctx context.Context) error {
	_, err := j.sync.SyncToday(ctx)
	return err
}
