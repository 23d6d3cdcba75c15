// Package syncer drives the two sync flows: today only, and all known
// days.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eliasvk/tracksync/internal/events"
	"github.com/eliasvk/tracksync/internal/journal"
	"github.com/eliasvk/tracksync/internal/models"
	"github.com/eliasvk/tracksync/internal/reconcile"
)

// ReportSource fetches normalized daily reports for an inclusive date
// range. Empty bounds request the full available history.
type ReportSource interface {
	DailyReports(ctx context.Context, beginDateStr, endDateStr string) (map[string]models.DailyReport, error)
}

// Applier reconciles one daily report against its note.
type Applier interface {
	Apply(ctx context.Context, report models.DailyReport) (reconcile.Outcome, error)
}

// Summary aggregates one sync run.
type Summary struct {
	Days    int `json:"days"`    // days reconciled into a note
	Tasks   int `json:"tasks"`   // active tasks across those days
	Written int `json:"written"` // properties actually written
	Skipped int `json:"skipped"` // days without a daily note
}

// Syncer owns the lifetime of one sync run: fetch, normalize (inside the
// source), reconcile, journal, report.
type Syncer struct {
	source      ReportSource
	applier     Applier
	journal     journal.Store
	sink        events.Sink
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// New creates a syncer. The sink receives one started and exactly one
// terminal event per flow.
func New(source ReportSource, applier Applier, jr journal.Store, sink events.Sink, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		source:      source,
		applier:     applier,
		journal:     jr,
		sink:        sink,
		logger:      logger,
		concurrency: 4,
		now:         time.Now,
	}
}

// SetConcurrency bounds cross-note reconciliation in the all-days flow.
func (s *Syncer) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// SyncToday fetches the report scoped to today's date and reconciles it.
// A result without an entry for today is the informational "no data for
// today" outcome, with zero note writes.
func (s *Syncer) SyncToday(ctx context.Context) (Summary, error) {
	today := s.now().Format(models.DateLayout)
	s.sink.Publish(events.Event{Type: events.TypeSyncStarted, Data: map[string]string{"scope": "today", "date": today}})

	reports, err := s.source.DailyReports(ctx, today, today)
	if err != nil {
		s.fail("today", err)
		return Summary{}, err
	}
	s.cacheReports(reports)

	day, ok := reports[today]
	if !ok {
		s.sink.Publish(events.Event{Type: events.TypeSyncCompleted, Data: map[string]any{
			"scope": "today", "days": 0, "message": "no data for today",
		}})
		return Summary{}, nil
	}

	out, err := s.applier.Apply(ctx, day)
	if err != nil {
		s.fail("today", err)
		return Summary{}, err
	}

	sum := Summary{}
	if out.Skipped {
		sum.Skipped = 1
	} else {
		sum = Summary{Days: 1, Tasks: out.ActiveTasks, Written: out.Written}
		s.recordImport(out)
	}

	s.sink.Publish(events.Event{Type: events.TypeSyncCompleted, Data: map[string]any{
		"scope": "today", "days": sum.Days, "tasks": sum.Tasks, "written": sum.Written,
	}})
	return sum, nil
}

// SyncAll fetches the full-range report and reconciles every day in it.
// Cross-note work runs concurrently under a bounded limit; each note's
// own writes stay strictly sequential inside the applier, and no two days
// ever target the same note. The terminal event is emitted only after all
// reconciliations have completed. Per-day failures do not halt remaining
// days; the first one is reported alongside the success count.
func (s *Syncer) SyncAll(ctx context.Context) (Summary, error) {
	s.sink.Publish(events.Event{Type: events.TypeSyncStarted, Data: map[string]string{"scope": "all"}})

	reports, err := s.source.DailyReports(ctx, "", "")
	if err != nil {
		s.fail("all", err)
		return Summary{}, err
	}
	s.cacheReports(reports)

	var (
		mu       sync.Mutex
		sum      Summary
		firstErr error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, report := range reports {
		g.Go(func() error {
			out, applyErr := s.applier.Apply(ctx, report)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case applyErr != nil:
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", report.DateStr, applyErr)
				}
				s.logger.Warn("sync: day failed",
					slog.String("date", report.DateStr),
					slog.String("error", applyErr.Error()))
			case out.Skipped:
				sum.Skipped++
			default:
				sum.Days++
				sum.Tasks += out.ActiveTasks
				sum.Written += out.Written
				s.recordImport(out)
				s.sink.Publish(events.Event{Type: events.TypeNoteReconciled, Data: map[string]any{
					"date": out.DateStr, "written": out.Written,
				}})
			}
			return nil
		})
	}
	_ = g.Wait() // group funcs never return errors; per-day failures are collected above

	if firstErr != nil {
		s.sink.Publish(events.Event{Type: events.TypeSyncFailed, Data: map[string]any{
			"scope": "all", "days": sum.Days, "error": firstErr.Error(),
		}})
		return sum, firstErr
	}

	s.sink.Publish(events.Event{Type: events.TypeSyncCompleted, Data: map[string]any{
		"scope": "all", "days": sum.Days, "skipped": sum.Skipped, "written": sum.Written,
	}})
	return sum, nil
}

// ApplyCached reconciles a single date from the journal's report cache.
// Used when a daily note appears after its report was fetched.
func (s *Syncer) ApplyCached(ctx context.Context, dateStr string) (reconcile.Outcome, error) {
	report, ok, err := s.journal.Report(dateStr)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if !ok {
		return reconcile.Outcome{DateStr: dateStr, Skipped: true}, nil
	}
	out, err := s.applier.Apply(ctx, report)
	if err != nil {
		return out, err
	}
	if !out.Skipped {
		s.recordImport(out)
		s.sink.Publish(events.Event{Type: events.TypeNoteReconciled, Data: map[string]any{
			"date": out.DateStr, "written": out.Written,
		}})
	}
	return out, nil
}

// cacheReports stores every fetched report in the journal so that notes
// created later can be reconciled without refetching.
func (s *Syncer) cacheReports(reports map[string]models.DailyReport) {
	for _, report := range reports {
		if err := s.journal.SaveReport(report); err != nil {
			s.logger.Warn("sync: cache report failed",
				slog.String("date", report.DateStr),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Syncer) recordImport(out reconcile.Outcome) {
	if err := s.journal.RecordImport(out.DateStr, out.ActiveTasks, out.Written); err != nil {
		s.logger.Warn("sync: record import failed",
			slog.String("date", out.DateStr),
			slog.String("error", err.Error()))
	}
}

func (s *Syncer) fail(scope string, err error) {
	s.sink.Publish(events.Event{Type: events.TypeSyncFailed, Data: map[string]any{
		"scope": scope, "error": err.Error(),
	}})
}
