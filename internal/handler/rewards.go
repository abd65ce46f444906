package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/repository"
	"squad-rewards/internal/service"
)

// RewardHandler serves the catalog, per-player reward views and leaderboards.
type RewardHandler struct {
	catalog     CatalogService
	players     PlayerRewardService
	leaderboard LeaderboardService
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(catalog CatalogService, players PlayerRewardService, leaderboard LeaderboardService) *RewardHandler {
	return &RewardHandler{
		catalog:     catalog,
		players:     players,
		leaderboard: leaderboard,
	}
}

// ListRewards handles GET /api/rewards.
func (h *RewardHandler) ListRewards(c *gin.Context) {
	rewards, err := h.catalog.ListRewards(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list rewards")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// CreateReward handles POST /api/admin/rewards.
func (h *RewardHandler) CreateReward(c *gin.Context) {
	var in service.CreateRewardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rw, err := h.catalog.CreateReward(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReward) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("name", in.Name).Msg("Failed to create reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reward"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reward": rw})
}

// GetReward handles GET /api/admin/rewards/:rewardId.
func (h *RewardHandler) GetReward(c *gin.Context) {
	rewardID, ok := uuidParam(c, "rewardId")
	if !ok {
		return
	}

	rw, err := h.catalog.GetReward(c.Request.Context(), rewardID)
	if err != nil {
		if errors.Is(err, repository.ErrRewardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
			return
		}
		log.Error().Err(err).Str("reward_id", rewardID.String()).Msg("Failed to get reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reward"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reward": rw})
}

// DeleteReward handles DELETE /api/admin/rewards/:rewardId.
// Rewards that any player has earned are refused with 400.
func (h *RewardHandler) DeleteReward(c *gin.Context) {
	rewardID, ok := uuidParam(c, "rewardId")
	if !ok {
		return
	}

	err := h.catalog.DeleteReward(c.Request.Context(), rewardID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRewardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		case errors.Is(err, repository.ErrRewardEarned):
			msg := "Cannot delete reward: players have already earned it"
			var earned *service.EarnedError
			if errors.As(err, &earned) {
				msg = "Cannot delete reward: " + earned.Error()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			log.Error().Err(err).Str("reward_id", rewardID.String()).Msg("Failed to delete reward")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reward"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PlayerRewards handles GET /api/teams/:teamId/players/:playerId/rewards.
func (h *RewardHandler) PlayerRewards(c *gin.Context) {
	teamID, ok := uuidParam(c, "teamId")
	if !ok {
		return
	}
	playerID, ok := uuidParam(c, "playerId")
	if !ok {
		return
	}

	view, err := h.players.PlayerRewards(c.Request.Context(), teamID, playerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTeamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		case errors.Is(err, repository.ErrPlayerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		default:
			log.Error().Err(err).Str("player_id", playerID.String()).Msg("Failed to get player rewards")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve player rewards"})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// Leaderboard handles GET /api/teams/:teamId/rewards/leaderboard.
func (h *RewardHandler) Leaderboard(c *gin.Context) {
	teamID, ok := uuidParam(c, "teamId")
	if !ok {
		return
	}

	entries, err := h.leaderboard.Leaderboard(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
			return
		}
		log.Error().Err(err).Str("team_id", teamID.String()).Msg("Failed to get leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
