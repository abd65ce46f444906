package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"squad-rewards/internal/model"
)

// Common errors for team and player operations.
var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// TeamRepository handles team and player persistence.
type TeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository creates a new TeamRepository instance.
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// Create inserts a team.
func (r *TeamRepository) Create(ctx context.Context, managerID uuid.UUID, name, season string) (*model.Team, error) {
	const query = `
		INSERT INTO teams (manager_id, name, season)
		VALUES ($1, $2, $3)
		RETURNING id, manager_id, name, age_group, season, is_active, created_at
	`

	var t model.Team
	err := r.pool.QueryRow(ctx, query, managerID, name, season).Scan(
		&t.ID,
		&t.ManagerID,
		&t.Name,
		&t.AgeGroup,
		&t.Season,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return &t, nil
}

// GetByID retrieves an active team.
// Returns ErrTeamNotFound if the team does not exist or was archived.
func (r *TeamRepository) GetByID(ctx context.Context, teamID uuid.UUID) (*model.Team, error) {
	const query = `
		SELECT id, manager_id, name, age_group, season, is_active, created_at
		FROM teams
		WHERE id = $1 AND is_active
	`

	var t model.Team
	err := r.pool.QueryRow(ctx, query, teamID).Scan(
		&t.ID,
		&t.ManagerID,
		&t.Name,
		&t.AgeGroup,
		&t.Season,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

// CreatePlayer inserts a player into a team.
func (r *TeamRepository) CreatePlayer(ctx context.Context, teamID uuid.UUID, name string, squadNumber *int) (*model.Player, error) {
	const query = `
		INSERT INTO players (team_id, name, squad_number)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, name, position, squad_number, is_active, created_at
	`

	var p model.Player
	err := r.pool.QueryRow(ctx, query, teamID, name, squadNumber).Scan(
		&p.ID,
		&p.TeamID,
		&p.Name,
		&p.Position,
		&p.SquadNumber,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &p, nil
}

// GetPlayerTeamID resolves the team a player belongs to.
// Returns ErrPlayerNotFound when the player is unknown or has no team.
func (r *TeamRepository) GetPlayerTeamID(ctx context.Context, playerID uuid.UUID) (uuid.UUID, error) {
	const query = `SELECT team_id FROM players WHERE id = $1`

	var teamID *uuid.UUID
	err := r.pool.QueryRow(ctx, query, playerID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrPlayerNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get player team: %w", err)
	}
	if teamID == nil {
		return uuid.Nil, ErrPlayerNotFound
	}
	return *teamID, nil
}

// PlayerInTeam reports whether an active player belongs to the team.
func (r *TeamRepository) PlayerInTeam(ctx context.Context, teamID, playerID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM players WHERE id = $1 AND team_id = $2 AND is_active)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, playerID, teamID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check player membership: %w", err)
	}
	return exists, nil
}
