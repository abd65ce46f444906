package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"squad-rewards/internal/model"
)

// EventRepository handles match event persistence.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create logs an event. Live logging lives elsewhere; this serves fixtures and tests.
func (r *EventRepository) Create(ctx context.Context, matchID, playerID uuid.UUID, eventType model.EventType) (*model.MatchEvent, error) {
	const query = `
		INSERT INTO match_events (match_id, player_id, event_type, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, match_id, player_id, event_type, period, created_at
	`

	var ev model.MatchEvent
	err := r.pool.QueryRow(ctx, query, matchID, playerID, eventType).Scan(
		&ev.ID,
		&ev.MatchID,
		&ev.PlayerID,
		&ev.EventType,
		&ev.Period,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match event: %w", err)
	}

	return &ev, nil
}

// ListByMatch retrieves every event logged for a match.
func (r *EventRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*model.MatchEvent, error) {
	const query = `
		SELECT id, match_id, player_id, event_type, period, created_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match events: %w", err)
	}
	defer rows.Close()

	var events []*model.MatchEvent
	for rows.Next() {
		var ev model.MatchEvent
		err := rows.Scan(
			&ev.ID,
			&ev.MatchID,
			&ev.PlayerID,
			&ev.EventType,
			&ev.Period,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match events: %w", err)
	}

	return events, nil
}

// CountByPlayer counts a player's events per type, restricted to the given matches.
// An empty match set yields an empty result without touching the database.
func (r *EventRepository) CountByPlayer(ctx context.Context, playerID uuid.UUID, matchIDs []uuid.UUID) (map[model.EventType]int, error) {
	counts := make(map[model.EventType]int)
	if len(matchIDs) == 0 {
		return counts, nil
	}

	const query = `
		SELECT event_type, COUNT(*)
		FROM match_events
		WHERE player_id = $1 AND match_id = ANY($2::uuid[])
		GROUP BY event_type
	`

	ids := make([]string, len(matchIDs))
	for i, id := range matchIDs {
		ids[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, query, playerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count player events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventType model.EventType
			count     int
		)
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[eventType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event counts: %w", err)
	}

	return counts, nil
}
