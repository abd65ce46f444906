// Package worker runs background jobs of the rewards service.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/model"
	"squad-rewards/internal/reward"
)

// MatchLister lists recently completed matches.
type MatchLister interface {
	ListCompletedSince(ctx context.Context, since time.Time) ([]*model.Match, error)
}

// Evaluator runs reward evaluation for one match.
type Evaluator interface {
	Evaluate(ctx context.Context, matchID uuid.UUID) *reward.Result
}

// SweepStats summarises one sweep.
type SweepStats struct {
	Matches int
	Granted int
	Failed  int
}

// Sweeper periodically re-evaluates recently completed matches so grants
// missed by a failed or skipped trigger are eventually written. Evaluation is
// idempotent, so already granted rewards are left untouched.
type Sweeper struct {
	matches   MatchLister
	evaluator Evaluator
	interval  time.Duration
	lookback  time.Duration
	now       func() time.Time

	sched gocron.Scheduler
}

// NewSweeper creates a new Sweeper.
func NewSweeper(matches MatchLister, evaluator Evaluator, interval, lookback time.Duration) *Sweeper {
	return &Sweeper{
		matches:   matches,
		evaluator: evaluator,
		interval:  interval,
		lookback:  lookback,
		now:       time.Now,
	}
}

// Start schedules the sweep every interval. Runs never overlap.
func (s *Sweeper) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.Sweep(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("reward-sweep"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule reward sweep: %w", err)
	}

	sched.Start()
	s.sched = sched

	log.Info().
		Dur("interval", s.interval).
		Dur("lookback", s.lookback).
		Msg("Reward sweeper started")
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Sweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	log.Info().Msg("Reward sweeper stopped")
	return nil
}

// Sweep evaluates every match completed within the lookback window.
func (s *Sweeper) Sweep(ctx context.Context) SweepStats {
	var stats SweepStats

	since := s.now().Add(-s.lookback)
	matches, err := s.matches.ListCompletedSince(ctx, since)
	if err != nil {
		log.Error().Err(err).Time("since", since).Msg("Failed to list completed matches")
		return stats
	}

	for _, m := range matches {
		if ctx.Err() != nil {
			break
		}
		res := s.evaluator.Evaluate(ctx, m.ID)
		stats.Matches++
		stats.Granted += len(res.Granted)
		if !res.Success {
			stats.Failed++
			log.Warn().
				Str("match_id", m.ID.String()).
				Int("errors", len(res.Errors)).
				Msg("Sweep evaluation reported errors")
		}
	}

	log.Info().
		Int("matches", stats.Matches).
		Int("granted", stats.Granted).
		Int("failed", stats.Failed).
		Msg("Reward sweep finished")

	return stats
}
