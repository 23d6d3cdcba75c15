package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eliasvk/tracksync/internal/journal"
	"github.com/eliasvk/tracksync/internal/syncer"
)

// SyncRunner is the slice of the orchestrator the API needs.
type SyncRunner interface {
	SyncToday(ctx context.Context) (syncer.Summary, error)
	SyncAll(ctx context.Context) (syncer.Summary, error)
}

// Handler holds API route handlers.
type Handler struct {
	runner  SyncRunner
	journal journal.Store
}

// NewHandler creates a new Handler.
func NewHandler(runner SyncRunner, jr journal.Store) *Handler {
	return &Handler{runner: runner, journal: jr}
}

// Status handles GET /api/status: recent import journal rows.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	imports, err := h.journal.Imports(limit)
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imports": imports,
		"total":   len(imports),
	})
}

// TriggerSync handles POST /api/sync?scope=today|all. The flow runs
// synchronously; the response carries the run summary.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "today"
	}

	var (
		sum syncer.Summary
		err error
	)
	switch scope {
	case "today":
		sum, err = h.runner.SyncToday(r.Context())
	case "all":
		sum, err = h.runner.SyncAll(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("scope must be today or all"))
		return
	}
	if err != nil {
		slog.Error("sync failed", slog.String("scope", scope), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   err.Error(),
			"summary": sum,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":   scope,
		"summary": sum,
	})
}
