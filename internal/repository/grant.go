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

// ErrGrantExists is returned when a grant insert hits one of the uniqueness
// indexes, meaning the reward was already granted under the same key.
var ErrGrantExists = errors.New("reward already granted")

const grantColumns = `id, player_id, reward_id, match_id, achieved_date, metadata`

// GrantRepository handles player_rewards, the grant ledger.
type GrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository creates a new GrantRepository instance.
func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

func scanGrant(row pgx.Row) (*model.PlayerReward, error) {
	var g model.PlayerReward
	err := row.Scan(
		&g.ID,
		&g.PlayerID,
		&g.RewardID,
		&g.MatchID,
		&g.AchievedDate,
		&g.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Exists reports whether the player holds the reward. With a non-nil matchID
// only grants tagged with that match count.
func (r *GrantRepository) Exists(ctx context.Context, playerID, rewardID uuid.UUID, matchID *uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM player_rewards
			WHERE player_id = $1 AND reward_id = $2
			  AND ($3::uuid IS NULL OR match_id = $3)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, playerID, rewardID, matchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check grant existence: %w", err)
	}
	return exists, nil
}

// Create inserts a grant. A conflict on the uniqueness indexes is reported as
// ErrGrantExists and leaves the ledger untouched.
func (r *GrantRepository) Create(ctx context.Context, g *model.PlayerReward) (*model.PlayerReward, error) {
	query := `
		INSERT INTO player_rewards (player_id, reward_id, match_id, achieved_date, metadata)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT DO NOTHING
		RETURNING ` + grantColumns

	created, err := scanGrant(r.pool.QueryRow(ctx, query, g.PlayerID, g.RewardID, g.MatchID, g.Metadata))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantExists
		}
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}
	return created, nil
}

// CountByReward returns how many grants reference a catalog entry.
func (r *GrantRepository) CountByReward(ctx context.Context, rewardID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM player_rewards WHERE reward_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, rewardID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count grants for reward: %w", err)
	}
	return count, nil
}

// ListByPlayer returns a player's grants, newest first.
func (r *GrantRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.PlayerReward, error) {
	query := `
		SELECT ` + grantColumns + ` FROM player_rewards
		WHERE player_id = $1
		ORDER BY achieved_date DESC, id
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var grants []*model.PlayerReward
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grants: %w", err)
	}

	return grants, nil
}

// TeamCounts returns grant counts per reward type for every active player of a team.
// Rows are unordered; ranking is the caller's concern.
func (r *GrantRepository) TeamCounts(ctx context.Context, teamID uuid.UUID) ([]*model.LeaderboardEntry, error) {
	const query = `
		SELECT p.id, p.name, p.squad_number,
			COUNT(pr.id),
			COUNT(pr.id) FILTER (WHERE rw.reward_type = 'match'),
			COUNT(pr.id) FILTER (WHERE rw.reward_type = 'season'),
			COUNT(pr.id) FILTER (WHERE rw.reward_type = 'leadership')
		FROM players p
		LEFT JOIN player_rewards pr ON pr.player_id = p.id
		LEFT JOIN rewards rw ON rw.id = pr.reward_id
		WHERE p.team_id = $1 AND p.is_active
		GROUP BY p.id, p.name, p.squad_number
	`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team grant counts: %w", err)
	}
	defer rows.Close()

	var entries []*model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		err := rows.Scan(
			&e.PlayerID,
			&e.PlayerName,
			&e.SquadNumber,
			&e.TotalRewards,
			&e.MatchRewards,
			&e.SeasonRewards,
			&e.LeadershipRewards,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard entries: %w", err)
	}

	return entries, nil
}
