package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
)

// missingSquadNumber ranks players without a squad number after everyone else on ties.
const missingSquadNumber = 999

// GrantCounter aggregates grant counts per team member.
type GrantCounter interface {
	TeamCounts(ctx context.Context, teamID uuid.UUID) ([]*model.LeaderboardEntry, error)
}

// LeaderboardService handles team reward rankings.
type LeaderboardService struct {
	teams  TeamStore
	grants GrantCounter
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(teams TeamStore, grants GrantCounter) *LeaderboardService {
	return &LeaderboardService{teams: teams, grants: grants}
}

// Leaderboard returns every active player of the team with their grant
// counts, most rewarded first.
func (s *LeaderboardService) Leaderboard(ctx context.Context, teamID uuid.UUID) ([]*model.LeaderboardEntry, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	entries, err := s.grants.TeamCounts(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	SortLeaderboard(entries)
	if entries == nil {
		entries = []*model.LeaderboardEntry{}
	}
	return entries, nil
}

// SortLeaderboard orders entries by total rewards descending, then squad
// number ascending, then name.
func SortLeaderboard(entries []*model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalRewards != b.TotalRewards {
			return a.TotalRewards > b.TotalRewards
		}
		if sa, sb := squadNumber(a), squadNumber(b); sa != sb {
			return sa < sb
		}
		return a.PlayerName < b.PlayerName
	})
}

func squadNumber(e *model.LeaderboardEntry) int {
	if e.SquadNumber == nil {
		return missingSquadNumber
	}
	return *e.SquadNumber
}
