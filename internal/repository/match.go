// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"squad-rewards/internal/model"
)

// Common errors for repository operations.
var (
	ErrMatchNotFound = errors.New("match not found")
)

// AwardPlayerOfMatch is the match_awards type of the manager-selected POTM.
const AwardPlayerOfMatch = "player_of_match"

const matchColumns = `id, team_id, season, opponent_name, match_date, status, is_active, updated_at`

// MatchRepository handles match, roster and award persistence.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var m model.Match
	err := row.Scan(
		&m.ID,
		&m.TeamID,
		&m.Season,
		&m.OpponentName,
		&m.MatchDate,
		&m.Status,
		&m.IsActive,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a match. Used by fixtures and tests; match CRUD lives elsewhere.
func (r *MatchRepository) Create(ctx context.Context, m *model.Match) (*model.Match, error) {
	query := `
		INSERT INTO matches (team_id, season, opponent_name, match_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + matchColumns

	created, err := scanMatch(r.pool.QueryRow(ctx, query, m.TeamID, m.Season, m.OpponentName, m.MatchDate, m.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active match by its ID.
// Returns ErrMatchNotFound if the match does not exist.
func (r *MatchRepository) GetByID(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 AND is_active`

	m, err := scanMatch(r.pool.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// SetStatus moves a match to a new status.
func (r *MatchRepository) SetStatus(ctx context.Context, matchID uuid.UUID, status model.MatchStatus) error {
	const query = `UPDATE matches SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, matchID, status)
	if err != nil {
		return fmt.Errorf("failed to set match status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// GetPlayerOfMatch returns the POTM of a match, or nil when none was selected.
func (r *MatchRepository) GetPlayerOfMatch(ctx context.Context, matchID uuid.UUID) (*uuid.UUID, error) {
	const query = `
		SELECT player_id FROM match_awards
		WHERE match_id = $1 AND award_type = $2
	`

	var playerID uuid.UUID
	err := r.pool.QueryRow(ctx, query, matchID, AwardPlayerOfMatch).Scan(&playerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player of the match: %w", err)
	}
	return &playerID, nil
}

// SetPlayerOfMatch records (or replaces) the POTM award of a match.
func (r *MatchRepository) SetPlayerOfMatch(ctx context.Context, matchID, playerID uuid.UUID) error {
	const query = `
		INSERT INTO match_awards (match_id, player_id, award_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id, award_type)
		DO UPDATE SET player_id = EXCLUDED.player_id, created_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, matchID, playerID, AwardPlayerOfMatch); err != nil {
		return fmt.Errorf("failed to set player of the match: %w", err)
	}
	return nil
}

// AddToRoster adds a player to a match roster.
func (r *MatchRepository) AddToRoster(ctx context.Context, matchID, playerID uuid.UUID, isCaptain bool) error {
	const query = `
		INSERT INTO match_players (match_id, player_id, is_captain)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id, player_id) DO UPDATE SET is_captain = EXCLUDED.is_captain
	`
	if _, err := r.pool.Exec(ctx, query, matchID, playerID, isCaptain); err != nil {
		return fmt.Errorf("failed to add player to roster: %w", err)
	}
	return nil
}

// ListCaptains returns every player flagged captain for a match, ordered by player ID.
// Normally there is exactly one.
func (r *MatchRepository) ListCaptains(ctx context.Context, matchID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT player_id FROM match_players
		WHERE match_id = $1 AND is_captain
		ORDER BY player_id
	`
	return r.queryIDs(ctx, "captains", query, matchID)
}

// CountCaptaincies returns how many matches a player has captained, across all teams.
func (r *MatchRepository) CountCaptaincies(ctx context.Context, playerID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM match_players WHERE player_id = $1 AND is_captain`

	var count int
	if err := r.pool.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count captaincies: %w", err)
	}
	return count, nil
}

// ListCompletedIDs returns the IDs of a team's completed matches.
// A nil season matches every season.
func (r *MatchRepository) ListCompletedIDs(ctx context.Context, teamID uuid.UUID, season *string) ([]uuid.UUID, error) {
	const query = `
		SELECT id FROM matches
		WHERE team_id = $1 AND status = $2 AND is_active
		  AND ($3::text IS NULL OR season = $3)
		ORDER BY id
	`
	return r.queryIDs(ctx, "completed matches", query, teamID, model.MatchCompleted, season)
}

// ListCompletedSince returns matches that reached completed status at or after since.
func (r *MatchRepository) ListCompletedSince(ctx context.Context, since time.Time) ([]*model.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE status = $1 AND is_active AND updated_at >= $2
		ORDER BY updated_at
	`

	rows, err := r.pool.Query(ctx, query, model.MatchCompleted, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	defer rows.Close()

	var matches []*model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

func (r *MatchRepository) queryIDs(ctx context.Context, what, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return ids, nil
}
