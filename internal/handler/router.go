package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Evaluate       *EvaluateHandler
	Rewards        *RewardHandler
	Health         HealthChecker
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(), LoggingMiddleware(), corsMiddleware(cfg.CORSOrigins), TimeoutMiddleware(cfg.RequestTimeout))

	r.GET("/healthz", healthHandler(cfg.Health))

	api := r.Group("/api")
	{
		api.GET("/rewards", cfg.Rewards.ListRewards)
		api.POST("/admin/rewards", cfg.Rewards.CreateReward)
		api.GET("/admin/rewards/:rewardId", cfg.Rewards.GetReward)
		api.DELETE("/admin/rewards/:rewardId", cfg.Rewards.DeleteReward)

		teams := api.Group("/teams/:teamId")
		teams.POST("/matches/:matchId/evaluate-rewards", cfg.Evaluate.EvaluateRewards)
		teams.GET("/players/:playerId/rewards", cfg.Rewards.PlayerRewards)
		teams.GET("/rewards/leaderboard", cfg.Rewards.Leaderboard)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

func healthHandler(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unavailable",
					"database": "disconnected",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": "connected",
		})
	}
}
