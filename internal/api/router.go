package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eliasvk/tracksync/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(runner SyncRunner, jr journal.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(runner, jr)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)
	r.Post("/sync", h.TriggerSync)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
