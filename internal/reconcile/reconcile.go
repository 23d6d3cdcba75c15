// Package reconcile brings a daily note's properties in line with one
// day's normalized task durations.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eliasvk/tracksync/internal/apperr"
	"github.com/eliasvk/tracksync/internal/models"
	"github.com/eliasvk/tracksync/internal/notes"
)

// Outcome summarizes one day's reconciliation.
type Outcome struct {
	DateStr string
	// Skipped is true when the date has no daily note. Expected for
	// future dates and gaps, never an error.
	Skipped bool
	// ActiveTasks is the number of tasks that qualified for a property.
	ActiveTasks int
	// Written is the number of properties actually created or updated.
	Written int
}

// Reconciler applies daily reports to notes. Within one note, property
// writes are strictly sequential: a task's read/write cycle never begins
// before the previous task's write has completed and the configured delay
// has elapsed. The editor additionally serializes same-note mutations
// behind a lock, so the delay is a minimum gap between writes, not the
// only guard.
type Reconciler struct {
	resolver *notes.Resolver
	editor   notes.Editor
	delay    time.Duration
	logger   *slog.Logger
}

// New creates a reconciler. delay is the minimum gap imposed after each
// property write before the next task's cycle starts.
func New(resolver *notes.Resolver, editor notes.Editor, delay time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{resolver: resolver, editor: editor, delay: delay, logger: logger}
}

// Apply reconciles one daily report against its note. Re-running with
// unchanged state performs zero writes: a property whose current value
// already equals the new minutes is skipped entirely.
func (r *Reconciler) Apply(ctx context.Context, report models.DailyReport) (Outcome, error) {
	out := Outcome{DateStr: report.DateStr}

	notePath, err := r.resolver.Resolve(report.DateStr)
	if err != nil {
		if errors.Is(err, apperr.ErrNoNote) {
			r.logger.Debug("reconcile: no note for date", slog.String("date", report.DateStr))
			out.Skipped = true
			return out, nil
		}
		return out, err
	}

	wrotePrev := false
	for _, task := range report.Tasks {
		if !task.Active() {
			continue
		}
		out.ActiveTasks++

		// Minimum gap after the previous write before this cycle starts.
		if wrotePrev && r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return out, ctx.Err()
			}
		}
		wrotePrev = false

		name := task.PropertyName()
		current, exists, err := r.editor.PropertyValue(ctx, notePath, name)
		if err != nil {
			return out, fmt.Errorf("reconcile: read %s on %s: %w", name, notePath, err)
		}
		if exists && minutesEqual(current, task.TotalTimeMin) {
			continue
		}

		if exists {
			err = r.editor.UpdateProperty(ctx, notePath, name, task.TotalTimeMin)
		} else {
			err = r.editor.CreateProperty(ctx, notePath, name, task.TotalTimeMin)
		}
		if err != nil {
			return out, fmt.Errorf("reconcile: write %s on %s: %w", name, notePath, err)
		}
		out.Written++
		wrotePrev = true

		r.logger.Debug("reconcile: property written",
			slog.String("note", notePath),
			slog.String("property", name),
			slog.Int("minutes", task.TotalTimeMin))
	}

	return out, nil
}

// minutesEqual compares a decoded frontmatter value against the new
// minute count. Hand-edited notes may hold the number as a string.
func minutesEqual(current any, minutes int) bool {
	switch v := current.(type) {
	case int:
		return v == minutes
	case int64:
		return v == int64(minutes)
	case uint64:
		return minutes >= 0 && v == uint64(minutes)
	case float64:
		return v == float64(minutes)
	case string:
		n, err := strconv.Atoi(v)
		return err == nil && n == minutes
	default:
		return false
	}
}
