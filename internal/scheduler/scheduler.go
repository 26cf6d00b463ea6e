// Package scheduler runs the periodic jobs: overdue task reminders,
// invoice follow-up task creation, and due email automation sends.
package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/nexora-hq/nexora/internal/config"
)

// Job is one schedulable unit of work.
type Job func(ctx context.Context) error

// Scheduler owns the cron runner and the job guards.
type Scheduler struct {
	cron *cron.Cron
	cfg  config.SchedulerConfig
}

// New builds a scheduler with the three standard jobs registered on their
// configured cron specs.
func New(cfg config.SchedulerConfig, taskReminders, invoiceFollowUps, emailSends Job) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, cfg: cfg}

	jobs := []struct {
		name string
		spec string
		run  Job
	}{
		{"task_reminders", cfg.TaskReminderSpec, taskReminders},
		{"invoice_follow_ups", cfg.FollowUpSpec, invoiceFollowUps},
		{"email_sends", cfg.EmailSpec, emailSends},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, guarded(j.name, j.run)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// guarded wraps a job so a tick is skipped while the previous run of the
// same job is still in flight.
func guarded(name string, run Job) func() {
	var inFlight atomic.Bool
	return func() {
		if !inFlight.CompareAndSwap(false, true) {
			log.Warn().Str("job", name).Msg("previous run still active, skipping tick")
			return
		}
		defer inFlight.Store(false)

		runID := uuid.NewString()
		logger := log.With().Str("job", name).Str("run_id", runID).Logger()
		logger.Info().Msg("job started")

		if err := run(logger.WithContext(context.Background())); err != nil {
			logger.Error().Err(err).Msg("job failed")
			return
		}
		logger.Info().Msg("job finished")
	}
}

// Start begins scheduling; no-op when the scheduler is disabled.
func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		log.Info().Msg("scheduler disabled")
		return
	}
	s.cron.Start()
	log.Info().
		Str("task_reminders", s.cfg.TaskReminderSpec).
		Str("invoice_follow_ups", s.cfg.FollowUpSpec).
		Str("email_sends", s.cfg.EmailSpec).
		Msg("scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}
