// Package main is the entry point for the squad rewards service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/config"
	"squad-rewards/internal/handler"
	"squad-rewards/internal/pkg/db"
	"squad-rewards/internal/repository"
	"squad-rewards/internal/reward"
	"squad-rewards/internal/service"
	"squad-rewards/internal/worker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log)
	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories
	teamRepo := repository.NewTeamRepository(dbPool.Pool)
	matchRepo := repository.NewMatchRepository(dbPool.Pool)
	eventRepo := repository.NewEventRepository(dbPool.Pool)
	rewardRepo := repository.NewRewardRepository(dbPool.Pool)
	grantRepo := repository.NewGrantRepository(dbPool.Pool)

	// Reward engine
	deps := reward.Dependencies{
		Matches: matchRepo,
		Events:  eventRepo,
		Catalog: rewardRepo,
		Grants:  grantRepo,
		Players: teamRepo,
	}
	evaluator := reward.NewEvaluator(deps, reward.Options{
		SeasonFilter: cfg.Rewards.SeasonFilter,
		Concurrency:  cfg.Rewards.Concurrency,
	})
	calculator := reward.NewCalculator(deps, cfg.Rewards.SeasonFilter)

	log.Info().
		Bool("season_filter", cfg.Rewards.SeasonFilter).
		Int("concurrency", cfg.Rewards.Concurrency).
		Msg("Reward engine initialized")

	// Services
	catalogService := service.NewCatalogService(rewardRepo, grantRepo)
	playerRewardService := service.NewPlayerRewardService(teamRepo, rewardRepo, grantRepo, calculator)
	leaderboardService := service.NewLeaderboardService(teamRepo, grantRepo)
	evaluationService := service.NewEvaluationService(matchRepo, evaluator)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(handler.RouterConfig{
		Evaluate:       handler.NewEvaluateHandler(evaluationService),
		Rewards:        handler.NewRewardHandler(catalogService, playerRewardService, leaderboardService),
		Health:         dbPool,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sweeper *worker.Sweeper
	if cfg.Sweep.Enabled {
		sweeper = worker.NewSweeper(matchRepo, evaluationService, cfg.Sweep.Interval, cfg.Sweep.Lookback)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start reward sweeper")
		}
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("HTTP server is starting...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if sweeper != nil {
		if err := sweeper.Stop(); err != nil {
			log.Error().Err(err).Msg("Reward sweeper shutdown failed")
		}
	}

	log.Info().Msg("Server stopped gracefully")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
