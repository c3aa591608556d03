package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the periodic background jobs. Every job is wrapped with
// panic recovery and an overlap guard: an invocation that fires while the
// previous one is still running is skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
	}
}

// AddEvery registers a job on a fixed interval.
func (s *Scheduler) AddEvery(interval time.Duration, name string, job cron.Job) error {
	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", interval), job); err != nil {
		return fmt.Errorf("registering job %s: %w", name, err)
	}
	s.logger.Info().Str("job", name).Dur("interval", interval).Msg("job_registered")
	return nil
}

// AddCron registers a job on a cron expression.
func (s *Scheduler) AddCron(spec string, name string, job cron.Job) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("registering job %s: %w", name, err)
	}
	s.logger.Info().Str("job", name).Str("spec", spec).Msg("job_registered")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new triggers and returns a context that is done once
// in-flight jobs finish. Callers bound the wait themselves.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
