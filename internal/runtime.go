// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eliasvk/tracksync/internal/events"
	"github.com/eliasvk/tracksync/internal/journal"
	"github.com/eliasvk/tracksync/internal/notes"
	"github.com/eliasvk/tracksync/internal/reconcile"
	"github.com/eliasvk/tracksync/internal/state"
	"github.com/eliasvk/tracksync/internal/storage"
	"github.com/eliasvk/tracksync/internal/syncer"
	"github.com/eliasvk/tracksync/internal/timeflip"
)

// components holds the wired pipeline shared by every run mode.
type components struct {
	state    *state.Store
	vault    storage.Provider
	journal  *journal.DB
	client   *timeflip.Client
	resolver *notes.Resolver
	sync     *syncer.Syncer
}

func (c *components) close() {
	_ = c.journal.Close()
}

// buildComponents wires the pipeline from configuration. The returned
// components must be closed by the caller.
func buildComponents(cfg *Config, sink events.Sink, logger *slog.Logger) (*components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	st, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	jr, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	client := timeflip.NewClient(cfg.Remote.BaseURL, st)
	resolver := notes.NewResolver(vault, cfg.Vault.DailyFolder, cfg.Vault.DailyLayout)
	editor := notes.NewFileEditor(vault)
	rec := reconcile.New(resolver, editor, cfg.Sync.WriteDelay(), logger)

	sync := syncer.New(client, rec, jr, sink, logger)
	sync.SetConcurrency(cfg.Sync.Concurrency)

	return &components{
		state:    st,
		vault:    vault,
		journal:  jr,
		client:   client,
		resolver: resolver,
		sync:     sync,
	}, nil
}

// newLogger initializes a structured JSON logger and sets it as default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// SignIn exchanges account credentials for a session token and persists
// both. Empty email/password fall back to previously stored settings.
func SignIn(ctx context.Context, cfg *Config, email, password string) error {
	logger := newLogger(cfg, os.Stdout)

	st, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}

	settings := st.Settings()
	if email != "" {
		settings.Email = email
	}
	if password != "" {
		settings.Password = password
	}
	if settings.Email == "" || settings.Password == "" {
		return fmt.Errorf("email and password are required (flags or stored settings)")
	}
	if err := st.SetSettings(settings); err != nil {
		return err
	}

	client := timeflip.NewClient(cfg.Remote.BaseURL, st)
	if err := client.SignIn(ctx, settings.Email, settings.Password); err != nil {
		return err
	}
	logger.Info("signed in", slog.String("email", settings.Email))
	return nil
}

// SyncOnce runs a single sync flow ("today" or "all") and returns its
// summary.
func SyncOnce(ctx context.Context, cfg *Config, scope string) (syncer.Summary, error) {
	logger := newLogger(cfg, os.Stdout)

	comps, err := buildComponents(cfg, events.NewLogSink(logger), logger)
	if err != nil {
		return syncer.Summary{}, err
	}
	defer comps.close()

	switch scope {
	case "today":
		return comps.sync.SyncToday(ctx)
	case "all":
		return comps.sync.SyncAll(ctx)
	default:
		return syncer.Summary{}, fmt.Errorf("unknown sync scope %q", scope)
	}
}
