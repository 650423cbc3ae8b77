// Package scheduler triggers export runs on a cadence.
//
// Two schedules exist: a daily completed-day export at a fixed local
// time, and an optional incremental export of the current day at a
// fixed interval. Runs execute sequentially on the scheduler's
// goroutine; the pipeline's own run mutex serializes them against
// triggered invocations. Nothing serializes runs across processes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/xtxerr/siphon/internal/logging"
	"github.com/xtxerr/siphon/internal/pipeline"
)

// Runner runs one export invocation. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, testMode bool) pipeline.Result
}

// Config configures the scheduler.
type Config struct {
	// DailyAt is the local "HH:MM" for the completed-day export.
	// Empty disables it.
	DailyAt string

	// IncrementalEvery, when non-zero, is the interval between
	// incremental exports of the current day.
	IncrementalEvery time.Duration

	// Location is the fixed local timezone used to interpret DailyAt.
	Location *time.Location
}

// Scheduler drives a Runner on the configured cadence.
type Scheduler struct {
	cfg    Config
	runner Runner
	log    *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// New creates a scheduler.
func New(cfg Config, runner Runner) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		log:    logging.Component("scheduler"),
		now:    time.Now,
	}
}

// Run blocks until ctx is canceled, firing exports on schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	var daily *time.Timer
	var dailyC <-chan time.Time
	if s.cfg.DailyAt != "" {
		d := s.untilDaily()
		daily = time.NewTimer(d)
		defer daily.Stop()
		dailyC = daily.C
		s.log.Info("daily export scheduled", "at", s.cfg.DailyAt, "in", d.Round(time.Second))
	}

	var incrementalC <-chan time.Time
	if s.cfg.IncrementalEvery > 0 {
		ticker := time.NewTicker(s.cfg.IncrementalEvery)
		defer ticker.Stop()
		incrementalC = ticker.C
		s.log.Info("incremental export scheduled", "every", s.cfg.IncrementalEvery)
	}

	if dailyC == nil && incrementalC == nil {
		s.log.Warn("no schedules configured, scheduler idle")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-dailyC:
			s.fire(ctx, false)
			daily.Reset(s.untilDaily())

		case <-incrementalC:
			s.fire(ctx, true)
		}
	}
}

// fire executes one run and logs its outcome. Scheduled runs have no
// caller to report to; failures surface in the logs and stats only.
func (s *Scheduler) fire(ctx context.Context, testMode bool) {
	res := s.runner.Run(ctx, testMode)
	if res.StatusCode != 200 {
		s.log.Error("scheduled export failed", "status", res.StatusCode, "body", res.Body)
		return
	}
	s.log.Info("scheduled export completed", "test_mode", testMode)
}

// untilDaily computes the duration until the next DailyAt in local time.
func (s *Scheduler) untilDaily() time.Duration {
	at, err := time.Parse("15:04", s.cfg.DailyAt)
	if err != nil {
		// Validated at config load; fall back to a day.
		return 24 * time.Hour
	}

	local := s.now().In(s.cfg.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), at.Hour(), at.Minute(), 0, 0, s.cfg.Location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}
