// Package notes maps calendar dates to daily note files and edits their
// frontmatter properties.
package notes

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/eliasvk/tracksync/internal/apperr"
	"github.com/eliasvk/tracksync/internal/models"
	"github.com/eliasvk/tracksync/internal/storage"
)

// Resolver deterministically computes daily note paths from a configured
// folder and filename layout (Go reference-time format, may contain
// slashes for nested folders).
type Resolver struct {
	store  storage.Provider
	folder string
	layout string
}

// NewResolver creates a resolver. An empty layout defaults to 2006-01-02.
func NewResolver(store storage.Provider, folder, layout string) *Resolver {
	if layout == "" {
		layout = models.DateLayout
	}
	return &Resolver{store: store, folder: folder, layout: layout}
}

// Folder returns the configured daily notes folder, relative to the vault
// root.
func (r *Resolver) Folder() string {
	return r.folder
}

// NotePath returns the vault-relative path of the daily note for date.
func (r *Resolver) NotePath(date time.Time) string {
	return path.Join(r.folder, date.Format(r.layout)) + ".md"
}

// Resolve maps an ISO date string to an existing daily note path.
// A date without a note yields apperr.ErrNoNote; future dates and gaps
// are expected, so callers treat it as a skip, not a failure.
func (r *Resolver) Resolve(dateStr string) (string, error) {
	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return "", fmt.Errorf("notes: parse date %q: %w", dateStr, err)
	}
	p := r.NotePath(date)
	ok, err := r.store.Exists(p)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("notes: %s: %w", dateStr, apperr.ErrNoNote)
	}
	return p, nil
}

// DateOf inverts NotePath: given a vault-relative path it returns the ISO
// date string the note belongs to, or false when the path is not a daily
// note.
func (r *Resolver) DateOf(relPath string) (string, bool) {
	p := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	if r.folder != "" {
		prefix := path.Clean(r.folder) + "/"
		if !strings.HasPrefix(p, prefix) {
			return "", false
		}
		p = strings.TrimPrefix(p, prefix)
	}
	if !strings.HasSuffix(p, ".md") {
		return "", false
	}
	p = strings.TrimSuffix(p, ".md")
	date, err := time.Parse(r.layout, p)
	if err != nil {
		return "", false
	}
	return date.Format(models.DateLayout), true
}
