// Package schedule runs recurring background jobs on cron specs.
package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of recurring work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps a cron runner. Jobs that are still running when their
// next tick arrives are skipped, not stacked.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
}

// New creates a scheduler using the standard five-field cron format.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger,
	}
}

// Add schedules job on the given cron spec.
func (s *Scheduler) Add(job Job, spec string) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(job)); err != nil {
		return err
	}
	s.logger.Info("schedule: job added", slog.String("job", job.Name()), slog.String("spec", spec))
	return nil
}

// Start begins firing jobs. ctx is passed to every job run.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()
}

func (s *Scheduler) wrap(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			s.logger.Info("schedule: job skipped, still running", slog.String("job", job.Name()))
			return
		}
		defer running.Store(false)

		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := job.Run(ctx); err != nil {
			s.logger.Warn("schedule: job failed",
				slog.String("job", job.Name()),
				slog.String("error", err.Error()))
		}
	}
}
