package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
	"squad-rewards/internal/pkg/lock"
	"squad-rewards/internal/repository"
	"squad-rewards/internal/reward"
)

// ErrMatchNotCompleted is returned when rewards are requested for a match
// that has not finished.
var ErrMatchNotCompleted = errors.New("match not completed")

// MatchReader loads matches.
type MatchReader interface {
	GetByID(ctx context.Context, matchID uuid.UUID) (*model.Match, error)
}

// Evaluator runs reward evaluation for a match.
type Evaluator interface {
	Evaluate(ctx context.Context, matchID uuid.UUID) *reward.Result
}

// EvaluationService triggers reward evaluation on behalf of a team.
// Runs for the same match are serialised within the process; the grant
// store's unique constraints still guard against other instances.
type EvaluationService struct {
	matches   MatchReader
	evaluator Evaluator
	locks     *lock.KeyLock[uuid.UUID]
}

// NewEvaluationService creates a new EvaluationService instance.
func NewEvaluationService(matches MatchReader, evaluator Evaluator) *EvaluationService {
	return &EvaluationService{
		matches:   matches,
		evaluator: evaluator,
		locks:     lock.New[uuid.UUID](),
	}
}

// EvaluateMatch runs the evaluator for a completed match of the team.
// A match of another team is reported as repository.ErrMatchNotFound.
func (s *EvaluationService) EvaluateMatch(ctx context.Context, teamID, matchID uuid.UUID) (*reward.Result, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.TeamID != teamID {
		return nil, repository.ErrMatchNotFound
	}
	if !match.IsCompleted() {
		return nil, ErrMatchNotCompleted
	}

	return s.evaluate(ctx, matchID)
}

// Evaluate runs the evaluator for a match without the team check. A run that
// cannot take the match lock before ctx ends is reported as a failed result.
func (s *EvaluationService) Evaluate(ctx context.Context, matchID uuid.UUID) *reward.Result {
	res, err := s.evaluate(ctx, matchID)
	if err != nil {
		return &reward.Result{
			Success: false,
			Granted: []*model.PlayerReward{},
			Errors:  []string{"Timed out waiting for a running evaluation of this match"},
		}
	}
	return res
}

func (s *EvaluationService) evaluate(ctx context.Context, matchID uuid.UUID) (*reward.Result, error) {
	if err := s.locks.Lock(ctx, matchID); err != nil {
		return nil, fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}
	defer s.locks.Unlock(matchID)

	return s.evaluator.Evaluate(ctx, matchID), nil
}
