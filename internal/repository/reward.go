package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"squad-rewards/internal/model"
)

// Common errors for catalog operations.
var (
	ErrRewardNotFound = errors.New("reward not found")
	ErrRewardEarned   = errors.New("reward has been earned")
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for a restricted delete.
const foreignKeyViolation = "23503"

const rewardColumns = `id, name, description, icon, reward_type, criteria_scope,
	criteria_event_type, criteria_threshold, metadata, created_at`

// RewardRepository handles the reward catalog.
type RewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository instance.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

func scanReward(row pgx.Row) (*model.Reward, error) {
	var rw model.Reward
	err := row.Scan(
		&rw.ID,
		&rw.Name,
		&rw.Description,
		&rw.Icon,
		&rw.RewardType,
		&rw.CriteriaScope,
		&rw.CriteriaEventType,
		&rw.CriteriaThreshold,
		&rw.Metadata,
		&rw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// Create inserts a catalog entry.
func (r *RewardRepository) Create(ctx context.Context, rw *model.Reward) (*model.Reward, error) {
	query := `
		INSERT INTO rewards (name, description, icon, reward_type, criteria_scope,
			criteria_event_type, criteria_threshold, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + rewardColumns

	created, err := scanReward(r.pool.QueryRow(ctx, query,
		rw.Name,
		rw.Description,
		rw.Icon,
		rw.RewardType,
		rw.CriteriaScope,
		rw.CriteriaEventType,
		rw.CriteriaThreshold,
		rw.Metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return created, nil
}

// GetByID retrieves a catalog entry.
// Returns ErrRewardNotFound if it does not exist.
func (r *RewardRepository) GetByID(ctx context.Context, rewardID uuid.UUID) (*model.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = $1`

	rw, err := scanReward(r.pool.QueryRow(ctx, query, rewardID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	return rw, nil
}

// List returns the full catalog ordered by reward type, then threshold.
func (r *RewardRepository) List(ctx context.Context) ([]*model.Reward, error) {
	query := `
		SELECT ` + rewardColumns + ` FROM rewards
		ORDER BY reward_type, criteria_threshold, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*model.Reward
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rewards: %w", err)
	}

	return rewards, nil
}

// Delete removes a catalog entry. Entries referenced by a grant are kept and
// reported as ErrRewardEarned.
func (r *RewardRepository) Delete(ctx context.Context, rewardID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, rewardID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrRewardEarned
		}
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRewardNotFound
	}
	return nil
}
