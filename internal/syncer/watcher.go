package syncer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/eliasvk/tracksync/internal/notes"
)

// Watch starts an fsnotify watcher on the daily notes folder and runs
// until ctx is cancelled. When a daily note file appears whose date has a
// cached report (the date was skipped earlier because the note did not
// exist) the cached report is reconciled into the new note. Apply is
// idempotent, so reacting to our own atomic rewrites is harmless.
//
// New directories created at runtime (nested filename layouts produce
// year/month folders) are automatically added to the watch list.
func (s *Syncer) Watch(ctx context.Context, vaultRoot string, resolver *notes.Resolver) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watchRoot := filepath.Join(vaultRoot, filepath.FromSlash(resolver.Folder()))
	if err := os.MkdirAll(watchRoot, 0o755); err != nil {
		return err
	}
	if err := addDirsRecursive(w, watchRoot); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", watchRoot))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}

			absPath := ev.Name

			// New directories: add to watcher and sweep for notes that
			// arrived with them.
			if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
				if addErr := addDirsRecursive(w, absPath); addErr != nil {
					s.logger.Warn("watcher: add new dir failed",
						slog.String("path", absPath),
						slog.String("error", addErr.Error()))
				}
				s.sweepNewDir(ctx, vaultRoot, absPath, resolver)
				continue
			}

			s.handleCreated(ctx, vaultRoot, absPath, resolver)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleCreated reconciles a newly created daily note from the report
// cache, if its date has one.
func (s *Syncer) handleCreated(ctx context.Context, vaultRoot, absPath string, resolver *notes.Resolver) {
	if !strings.HasSuffix(absPath, ".md") {
		return
	}
	rel, err := filepath.Rel(vaultRoot, absPath)
	if err != nil {
		return
	}
	dateStr, ok := resolver.DateOf(filepath.ToSlash(rel))
	if !ok {
		return
	}

	out, err := s.ApplyCached(ctx, dateStr)
	if err != nil {
		s.logger.Warn("watcher: reconcile failed",
			slog.String("date", dateStr),
			slog.String("error", err.Error()))
		return
	}
	if out.Written > 0 {
		s.logger.Info("watcher: late note reconciled",
			slog.String("date", dateStr),
			slog.Int("written", out.Written))
	}
}

// sweepNewDir reconciles any daily notes already present in a newly
// created directory.
func (s *Syncer) sweepNewDir(ctx context.Context, vaultRoot, dirPath string, resolver *notes.Resolver) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		s.handleCreated(ctx, vaultRoot, path, resolver)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
