package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
	"squad-rewards/internal/reward"
)

// TeamStore reads teams and their players.
type TeamStore interface {
	GetByID(ctx context.Context, teamID uuid.UUID) (*model.Team, error)
	PlayerInTeam(ctx context.Context, teamID, playerID uuid.UUID) (bool, error)
}

// GrantReader reads a player's grants.
type GrantReader interface {
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.PlayerReward, error)
}

// ProgressSource computes progress toward a catalog entry.
type ProgressSource interface {
	ProgressFor(ctx context.Context, playerID uuid.UUID, rw *model.Reward, season string) (reward.Progress, error)
}

// PlayerRewardsView is everything the rewards page of one player shows.
type PlayerRewardsView struct {
	Rewards []*model.RewardWithProgress `json:"rewards"`
	Earned  []*model.PlayerReward       `json:"earned"`
}

// PlayerRewardService builds per-player reward views.
type PlayerRewardService struct {
	teams    TeamStore
	catalog  RewardStore
	grants   GrantReader
	progress ProgressSource
}

// NewPlayerRewardService creates a new PlayerRewardService instance.
func NewPlayerRewardService(teams TeamStore, catalog RewardStore, grants GrantReader, progress ProgressSource) *PlayerRewardService {
	return &PlayerRewardService{
		teams:    teams,
		catalog:  catalog,
		grants:   grants,
		progress: progress,
	}
}

// PlayerRewards annotates every catalog entry with the player's standing:
// earned entries carry the date of their first grant, the rest carry
// progress. Earned lists the raw grants newest first.
// Returns repository.ErrTeamNotFound or repository.ErrPlayerNotFound when
// the player is not an active member of the team.
func (s *PlayerRewardService) PlayerRewards(ctx context.Context, teamID, playerID uuid.UUID) (*PlayerRewardsView, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	member, err := s.teams.PlayerInTeam(ctx, teamID, playerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, repository.ErrPlayerNotFound
	}

	rewards, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	grants, err := s.grants.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	firstGrant := make(map[uuid.UUID]*model.PlayerReward, len(grants))
	for _, g := range grants {
		if prev, ok := firstGrant[g.RewardID]; !ok || g.AchievedDate.Before(prev.AchievedDate) {
			firstGrant[g.RewardID] = g
		}
	}

	view := &PlayerRewardsView{
		Rewards: make([]*model.RewardWithProgress, 0, len(rewards)),
		Earned:  grants,
	}
	if view.Earned == nil {
		view.Earned = []*model.PlayerReward{}
	}

	for _, rw := range rewards {
		entry := &model.RewardWithProgress{Reward: *rw}

		if g, ok := firstGrant[rw.ID]; ok {
			earnedAt := g.AchievedDate
			entry.IsEarned = true
			entry.EarnedAt = &earnedAt
		} else {
			p, err := s.progress.ProgressFor(ctx, playerID, rw, team.Season)
			if err != nil {
				return nil, fmt.Errorf("failed to compute progress for %s: %w", rw.Name, err)
			}
			entry.Progress = p.Current
			entry.ProgressTotal = p.Target
		}

		view.Rewards = append(view.Rewards, entry)
	}

	return view, nil
}
