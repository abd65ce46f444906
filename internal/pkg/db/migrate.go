package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type migration struct {
	name string
	sql  string
}

// migrations are applied in order; every statement is idempotent.
var migrations = []migration{
	{
		name: "teams and players",
		sql: `
		CREATE TABLE IF NOT EXISTS teams (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			manager_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			age_group VARCHAR(50),
			season VARCHAR(50) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS players (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			team_id UUID REFERENCES teams(id) ON DELETE SET NULL,
			name VARCHAR(255) NOT NULL,
			position VARCHAR(50),
			squad_number INT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_players_team ON players(team_id);
	`,
	},
	{
		name: "matches",
		sql: `
		CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			season VARCHAR(50) NOT NULL DEFAULT '',
			opponent_name VARCHAR(255) NOT NULL DEFAULT '',
			match_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_matches_team_status ON matches(team_id, status);

		CREATE TABLE IF NOT EXISTS match_players (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			is_captain BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (match_id, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_captain ON match_players(player_id) WHERE is_captain;

		CREATE TABLE IF NOT EXISTS match_events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			event_type VARCHAR(50) NOT NULL,
			period INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_match_events_match ON match_events(match_id);
		CREATE INDEX IF NOT EXISTS idx_match_events_player ON match_events(player_id, event_type);

		CREATE TABLE IF NOT EXISTS match_awards (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			award_type VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (match_id, award_type)
		);
	`,
	},
	{
		name: "rewards catalog and grants",
		sql: `
		CREATE TABLE IF NOT EXISTS rewards (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500) NOT NULL,
			icon VARCHAR(10) NOT NULL DEFAULT '',
			reward_type VARCHAR(20) NOT NULL,
			criteria_scope VARCHAR(20) NOT NULL,
			criteria_event_type VARCHAR(20),
			criteria_threshold INT NOT NULL CHECK (criteria_threshold > 0),
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS player_rewards (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			reward_id UUID NOT NULL REFERENCES rewards(id) ON DELETE RESTRICT,
			match_id UUID REFERENCES matches(id) ON DELETE CASCADE,
			achieved_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb
		);
		CREATE INDEX IF NOT EXISTS idx_player_rewards_player ON player_rewards(player_id, achieved_date DESC);

		-- one cumulative grant per (player, reward); one match-scoped grant per (player, reward, match)
		CREATE UNIQUE INDEX IF NOT EXISTS uq_player_rewards_cumulative
			ON player_rewards(player_id, reward_id) WHERE match_id IS NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS uq_player_rewards_per_match
			ON player_rewards(player_id, reward_id, match_id) WHERE match_id IS NOT NULL;
	`,
	},
	{
		name: "earned rewards cannot be deleted",
		sql: `
		ALTER TABLE player_rewards DROP CONSTRAINT IF EXISTS player_rewards_reward_id_fkey;
		ALTER TABLE player_rewards ADD CONSTRAINT player_rewards_reward_id_fkey
			FOREIGN KEY (reward_id) REFERENCES rewards(id) ON DELETE RESTRICT;
	`,
	},
}

// Migrate applies the database schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Info().Int("step", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
