// Package scheduler drives the periodic maintenance of the game service.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KirkDiggler/taleforge/internal/services/game"
	"github.com/rs/zerolog/log"
)

// Sweeper is the part of the game service the scheduler drives
type Sweeper interface {
	SweepOfflineParticipants(ctx context.Context, input *game.SweepOfflineParticipantsInput) (*game.SweepOfflineParticipantsOutput, error)
	SweepVotingTimeouts(ctx context.Context, input *game.SweepVotingTimeoutsInput) (*game.SweepVotingTimeoutsOutput, error)
	PurgeExpiredEvents(ctx context.Context, input *game.PurgeExpiredEventsInput) (*game.PurgeExpiredEventsOutput, error)
}

var ErrNilSweeper = errors.New("sweeper cannot be nil")

const (
	DefaultOfflineInterval = time.Minute
	DefaultVotingInterval  = 30 * time.Second
	DefaultPurgeInterval   = time.Hour
)

// Config for the scheduler
type Config struct {
	Sweeper Sweeper

	// OfflineThreshold is passed through to the offline sweep; zero keeps the service default
	OfflineThreshold time.Duration

	OfflineInterval time.Duration
	VotingInterval  time.Duration
	PurgeInterval   time.Duration
}

// Scheduler runs each sweep on its own ticker
type Scheduler struct {
	sweeper          Sweeper
	offlineThreshold time.Duration
	jobs             []job
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// New creates a scheduler
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil || cfg.Sweeper == nil {
		return nil, ErrNilSweeper
	}

	s := &Scheduler{
		sweeper:          cfg.Sweeper,
		offlineThreshold: cfg.OfflineThreshold,
	}

	s.jobs = []job{
		{name: "offline_sweep", interval: orDefault(cfg.OfflineInterval, DefaultOfflineInterval), run: s.sweepOffline},
		{name: "voting_timeouts", interval: orDefault(cfg.VotingInterval, DefaultVotingInterval), run: s.sweepVoting},
		{name: "event_retention", interval: orDefault(cfg.PurgeInterval, DefaultPurgeInterval), run: s.purge},
	}

	return s, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}

	log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
	wg.Wait()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("job", j.name).Msg("scheduled job failed")
			}
		}
	}
}

func (s *Scheduler) sweepOffline(ctx context.Context) error {
	_, err := s.sweeper.SweepOfflineParticipants(ctx, &game.SweepOfflineParticipantsInput{
		Threshold: s.offlineThreshold,
	})
	return err
}

func (s *Scheduler) sweepVoting(ctx context.Context) error {
	_, err := s.sweeper.SweepVotingTimeouts(ctx, &game.SweepVotingTimeoutsInput{})
	return err
}

func (s *Scheduler) purge(ctx context.Context) error {
	_, err := s.sweeper.PurgeExpiredEvents(ctx, &game.PurgeExpiredEventsInput{})
	return err
}
