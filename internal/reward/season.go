package reward

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

// seasonTally is a player's event counts across a team's completed matches.
type seasonTally struct {
	total  int
	byType map[model.EventType]int
}

func (t seasonTally) count(et model.EventType) int {
	return t.byType[et]
}

// seasonAggregator computes season aggregates from raw events. One aggregator
// lives for a single evaluation run: a team's completed-match set is resolved
// once and each player's counts are fetched with one grouped query.
type seasonAggregator struct {
	matches Matches
	events  Events
	players Players
	season  *string

	mu          sync.Mutex
	teamMatches map[uuid.UUID][]uuid.UUID
	tallies     map[uuid.UUID]seasonTally
}

// newSeasonAggregator creates an aggregator. A nil season counts every
// completed match of the team.
func newSeasonAggregator(deps Dependencies, season *string) *seasonAggregator {
	return &seasonAggregator{
		matches:     deps.Matches,
		events:      deps.Events,
		players:     deps.Players,
		season:      season,
		teamMatches: make(map[uuid.UUID][]uuid.UUID),
		tallies:     make(map[uuid.UUID]seasonTally),
	}
}

// tally returns the player's season counts. A player without a resolvable
// team has an empty tally.
func (a *seasonAggregator) tally(ctx context.Context, playerID uuid.UUID) (seasonTally, error) {
	a.mu.Lock()
	t, ok := a.tallies[playerID]
	a.mu.Unlock()
	if ok {
		return t, nil
	}

	teamID, err := a.players.GetPlayerTeamID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			log.Debug().Str("player_id", playerID.String()).Msg("Player has no team, season count is 0")
			return a.store(playerID, seasonTally{}), nil
		}
		return seasonTally{}, err
	}

	matchIDs, err := a.completedMatches(ctx, teamID)
	if err != nil {
		return seasonTally{}, err
	}

	byType, err := a.events.CountByPlayer(ctx, playerID, matchIDs)
	if err != nil {
		return seasonTally{}, err
	}

	t = seasonTally{byType: byType}
	for _, n := range byType {
		t.total += n
	}

	log.Debug().
		Str("player_id", playerID.String()).
		Str("team_id", teamID.String()).
		Int("completed_matches", len(matchIDs)).
		Int("season_events", t.total).
		Msg("Season aggregate computed")

	return a.store(playerID, t), nil
}

func (a *seasonAggregator) completedMatches(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	a.mu.Lock()
	ids, ok := a.teamMatches[teamID]
	a.mu.Unlock()
	if ok {
		return ids, nil
	}

	ids, err := a.matches.ListCompletedIDs(ctx, teamID, a.season)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.teamMatches[teamID] = ids
	a.mu.Unlock()
	return ids, nil
}

func (a *seasonAggregator) store(playerID uuid.UUID, t seasonTally) seasonTally {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tallies[playerID] = t
	return t
}
