package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"campus_sync/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context) ([]*domain.SyncStats, error)
}

type Scheduler struct {
	syncer     Syncer
	schedule   cron.Schedule
	spec       string
	runTimeout time.Duration
	logger     *slog.Logger
	cronLogger cron.Logger
}

// NewScheduler parses spec as a standard cron expression or descriptor
// such as "@every 1h".
func NewScheduler(syncer Syncer, spec string, runTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	return &Scheduler{
		syncer:     syncer,
		schedule:   schedule,
		spec:       spec,
		runTimeout: runTimeout,
		logger:     logger,
		cronLogger: cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo)),
	}, nil
}

// Start runs one pass immediately, then on every tick until ctx is done.
// A tick that fires while the previous pass is still running is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "schedule", s.spec, "run_timeout", s.runTimeout)

	job := s.job(ctx)
	job.Run()

	c := cron.New(cron.WithLogger(s.cronLogger))
	c.Schedule(s.schedule, job)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) job(ctx context.Context) cron.Job {
	return cron.NewChain(
		cron.Recover(s.cronLogger),
		cron.SkipIfStillRunning(s.cronLogger),
	).Then(cron.FuncJob(func() { s.runSync(ctx) }))
}

func (s *Scheduler) runSync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	syncCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats, err := s.syncer.Sync(syncCtx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
	}

	var written, failed int
	for _, st := range stats {
		written += st.New + st.Updated
		if st.Err != "" {
			failed++
		}
	}
	s.logger.Info("sync pass finished",
		"sources", len(stats),
		"failed_sources", failed,
		"written", written,
	)
}
