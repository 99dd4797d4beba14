package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// CronConfig carries the standard 5-field cron expressions for the four jobs.
// Expressions are deployment configuration; the deployed defaults keep daily
// before weekly before monthly so trend windows see a fully generated day.
type CronConfig struct {
	DailySalary  string
	WeeklyTrend  string
	MonthlyTrend string
	Cleanup      string
}

// Scheduler drives the statistics jobs on their cron triggers. A failing or
// panicking job is logged and left for its next trigger, which re-attempts
// the period under the idempotency guards; other jobs are unaffected.
type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs

	// runCtx is handed to job executions; set by Start before the cron
	// runner begins firing.
	runCtx context.Context
}

// NewScheduler registers the four jobs under the configured expressions.
func NewScheduler(jobs *Jobs, cfg CronConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		jobs:   jobs,
		runCtx: context.Background(),
	}

	entries := []struct {
		name string
		expr string
		run  func(context.Context) error
	}{
		{"daily_salary", cfg.DailySalary, jobs.RunDailySalary},
		{"weekly_trend", cfg.WeeklyTrend, jobs.RunWeeklyTrend},
		{"monthly_trend", cfg.MonthlyTrend, jobs.RunMonthlyTrend},
		{"cleanup", cfg.Cleanup, jobs.RunCleanup},
	}

	for _, entry := range entries {
		name, run := entry.name, entry.run
		if _, err := s.cron.AddFunc(entry.expr, func() {
			s.execute(name, run)
		}); err != nil {
			return nil, fmt.Errorf("register %s job (%q): %w", entry.name, entry.expr, err)
		}
	}

	return s, nil
}

// Start begins firing triggers and blocks until ctx is cancelled, then waits
// for any in-flight job to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runCtx = ctx

	slog.Info("[Scheduler] Starting statistics job scheduler")
	s.cron.Start()

	<-ctx.Done()

	slog.Info("[Scheduler] Stopping (context cancelled), waiting for running jobs...")
	<-s.cron.Stop().Done()
	slog.Info("[Scheduler] Stopped")

	return nil
}

// execute runs one job invocation with a run id, duration logging and panic
// recovery. Job errors are logged, not propagated — the next trigger is the
// retry, guarded by the idempotency checks.
func (s *Scheduler) execute(name string, run func(context.Context) error) {
	runID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Scheduler] Job panicked",
				"job", name,
				"run_id", runID,
				"panic", r,
			)
		}
	}()

	slog.Info("[Scheduler] Job starting", "job", name, "run_id", runID)

	if err := run(s.runCtx); err != nil {
		slog.Error("[Scheduler] Job failed",
			"job", name,
			"run_id", runID,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}

	slog.Info("[Scheduler] Job finished",
		"job", name,
		"run_id", runID,
		"duration", time.Since(start),
	)
}
