package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
	"squad-rewards/internal/service"
)

// EvaluateResponse reports the outcome of an evaluation to the caller.
// Store errors are only counted, never echoed.
type EvaluateResponse struct {
	Success        bool                  `json:"success"`
	Message        string                `json:"message"`
	NewRewards     int                   `json:"new_rewards"`
	ErrorCount     int                   `json:"error_count"`
	GrantedRewards []*model.PlayerReward `json:"granted_rewards"`
}

// EvaluateHandler triggers reward evaluation for completed matches.
type EvaluateHandler struct {
	evaluation EvaluationService
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(evaluation EvaluationService) *EvaluateHandler {
	return &EvaluateHandler{evaluation: evaluation}
}

// EvaluateRewards handles POST /api/teams/:teamId/matches/:matchId/evaluate-rewards.
// It answers 200 when every grant succeeded and 207 when any step failed.
func (h *EvaluateHandler) EvaluateRewards(c *gin.Context) {
	teamID, ok := uuidParam(c, "teamId")
	if !ok {
		return
	}
	matchID, ok := uuidParam(c, "matchId")
	if !ok {
		return
	}

	res, err := h.evaluation.EvaluateMatch(c.Request.Context(), teamID, matchID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		case errors.Is(err, service.ErrMatchNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Match must be completed before evaluating rewards"})
		default:
			log.Error().Err(err).Str("match_id", matchID.String()).Msg("Failed to evaluate rewards")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate rewards"})
		}
		return
	}

	resp := EvaluateResponse{
		Success:        res.Success,
		NewRewards:     len(res.Granted),
		ErrorCount:     len(res.Errors),
		GrantedRewards: res.Granted,
	}

	if !res.Success {
		resp.Message = "Reward evaluation completed with errors"
		c.JSON(http.StatusMultiStatus, resp)
		return
	}

	resp.Message = fmt.Sprintf("Successfully evaluated rewards. %d new reward(s) unlocked.", len(res.Granted))
	c.JSON(http.StatusOK, resp)
}
