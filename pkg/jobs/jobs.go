// Package jobs registers the periodic scans with a trigger scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/config"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/arnavshah/labour-scheduler/pkg/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler fires callbacks on a cron expression or an "@every <duration>"
// interval.
type Scheduler interface {
	Schedule(spec string, fn func()) error
	Start()
	Stop() context.Context
}

// Definition is one periodic trigger
type Definition struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (*labour.ScanReport, error)
}

// Definitions returns the three scans of the engine with their schedules
func Definitions(s config.Schedules, svc *labour.Service) []Definition {
	return []Definition{
		{Name: "upcoming_tasks", Spec: s.Upcoming, Run: svc.CheckUpcomingTasks},
		{Name: "labor_prediction", Spec: s.Shortage, Run: svc.PredictLaborShortages},
		{Name: "overtime_audit", Spec: s.Overtime, Run: svc.CheckOvertimeWarnings},
	}
}

type cronScheduler struct {
	c *cron.Cron
}

// NewCron returns a Scheduler backed by robfig/cron. A trigger that is still
// running when it fires again is skipped.
func NewCron(loc *time.Location, logger zerolog.Logger) Scheduler {
	cl := logging.CronLogger{Logger: logger}
	return &cronScheduler{c: cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)}
}

func (s *cronScheduler) Schedule(spec string, fn func()) error {
	_, err := s.c.AddFunc(spec, fn)
	return err
}

func (s *cronScheduler) Start() { s.c.Start() }
func (s *cronScheduler) Stop() context.Context { return s.c.Stop() }

// Runner binds definitions to a Scheduler
type Runner struct {
	sched   Scheduler
	log     zerolog.Logger
	timeout time.Duration
}

// NewRunner builds a Runner. Every scan run is bounded by timeout when it is
// positive.
func NewRunner(sched Scheduler, logger zerolog.Logger, timeout time.Duration) *Runner {
	return &Runner{sched: sched, log: logger, timeout: timeout}
}

// Register schedules every definition and fails on the first bad spec
func (r *Runner) Register(defs ...Definition) error {
	for _, d := range defs {
		d := d
		if err := r.sched.Schedule(d.Spec, func() { r.RunOnce(context.Background(), d) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", d.Name, d.Spec, err)
		}
		r.log.Info().Str("job", d.Name).Str("spec", d.Spec).Msg("Job registered")
	}
	return nil
}

// RunOnce runs a definition immediately and logs its report
func (r *Runner) RunOnce(ctx context.Context, d Definition) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := d.Run(ctx)
	event := r.log.Info()
	if err != nil {
		event = r.log.Error().Err(err)
	}
	if report != nil {
		event = event.Int("processed", report.Processed).
			Int("alerts_created", report.AlertsCreated).
			Int("failures", report.Failures)
	}
	event.Str("job", d.Name).Dur("duration", time.Since(start)).Msg("Job finished")
}

func (r *Runner) Start() { r.sched.Start() }

// Stop stops triggering and waits for running jobs or ctx, whichever ends first
func (r *Runner) Stop(ctx context.Context) {
	select {
	case <-r.sched.Stop().Done():
	case <-ctx.Done():
		r.log.Warn().Msg("Timed out waiting for running jobs")
	}
}
