// Package handler provides the HTTP API of the rewards service.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"squad-rewards/internal/model"
	"squad-rewards/internal/reward"
	"squad-rewards/internal/service"
)

// CatalogService manages catalog entries.
type CatalogService interface {
	ListRewards(ctx context.Context) ([]*model.Reward, error)
	CreateReward(ctx context.Context, in service.CreateRewardInput) (*model.Reward, error)
	GetReward(ctx context.Context, rewardID uuid.UUID) (*model.Reward, error)
	DeleteReward(ctx context.Context, rewardID uuid.UUID) error
}

// PlayerRewardService builds a player's reward view.
type PlayerRewardService interface {
	PlayerRewards(ctx context.Context, teamID, playerID uuid.UUID) (*service.PlayerRewardsView, error)
}

// LeaderboardService ranks a team's players.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, teamID uuid.UUID) ([]*model.LeaderboardEntry, error)
}

// EvaluationService triggers reward evaluation.
type EvaluationService interface {
	EvaluateMatch(ctx context.Context, teamID, matchID uuid.UUID) (*reward.Result, error)
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// uuidParam parses a path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}
