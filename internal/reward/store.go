// Package reward implements the reward evaluation engine: decoding catalog
// criteria, granting rewards after a completed match and computing progress
// toward rewards a player has not earned yet.
package reward

import (
	"context"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
)

// Matches reads match metadata, captaincy and awards.
type Matches interface {
	GetByID(ctx context.Context, matchID uuid.UUID) (*model.Match, error)
	GetPlayerOfMatch(ctx context.Context, matchID uuid.UUID) (*uuid.UUID, error)
	ListCaptains(ctx context.Context, matchID uuid.UUID) ([]uuid.UUID, error)
	CountCaptaincies(ctx context.Context, playerID uuid.UUID) (int, error)
	ListCompletedIDs(ctx context.Context, teamID uuid.UUID, season *string) ([]uuid.UUID, error)
}

// Events reads the immutable match event log.
type Events interface {
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*model.MatchEvent, error)
	CountByPlayer(ctx context.Context, playerID uuid.UUID, matchIDs []uuid.UUID) (map[model.EventType]int, error)
}

// Catalog reads reward definitions.
type Catalog interface {
	List(ctx context.Context) ([]*model.Reward, error)
	GetByID(ctx context.Context, rewardID uuid.UUID) (*model.Reward, error)
}

// Grants reads and appends to the grant ledger.
type Grants interface {
	Exists(ctx context.Context, playerID, rewardID uuid.UUID, matchID *uuid.UUID) (bool, error)
	Create(ctx context.Context, g *model.PlayerReward) (*model.PlayerReward, error)
}

// Players resolves player team membership.
type Players interface {
	GetPlayerTeamID(ctx context.Context, playerID uuid.UUID) (uuid.UUID, error)
}

// Dependencies holds the collaborators of the engine.
type Dependencies struct {
	Matches Matches
	Events  Events
	Catalog Catalog
	Grants  Grants
	Players Players
}
