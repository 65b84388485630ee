// Package scheduler runs the periodic NASA POWER refresh for every farm with
// coordinates.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Sweeper ingests every eligible user once; *services.IngestionService
// satisfies it.
type Sweeper interface {
	IngestAll(ctx context.Context) int
}

// Scheduler triggers a Sweeper at a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. An interval <= 0 disables it: Start becomes a no-op.
func New(interval time.Duration, sw Sweeper) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sw,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Enabled reports whether Start will schedule anything.
func (s *Scheduler) Enabled() bool { return s.interval > 0 && s.sweeper != nil }

// Start schedules the sweep and starts the underlying scheduler. The first
// sweep runs one interval after Start. Sweeps never overlap.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		log.Info().Msg("scheduler: ingestion interval is 0; periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.
		Every(s.interval).
		SingletonMode().
		WaitForSchedule().
		Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Info().Dur("interval", s.interval).Msg("scheduler: periodic nasa refresh started")
	return nil
}

// RunOnce performs a single sweep in the caller's goroutine.
func (s *Scheduler) RunOnce() {
	start := time.Now()
	n := s.sweeper.IngestAll(s.ctx)
	log.Info().Int("users", n).Dur("took", time.Since(start)).Msg("scheduler: nasa refresh sweep complete")
}

// Stop cancels a running sweep and stops future ones.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
