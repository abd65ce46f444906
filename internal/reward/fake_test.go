package reward

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

// memStore is an in-memory implementation of every engine dependency. Grant
// inserts honour the same uniqueness rules as the player_rewards indexes.
type memStore struct {
	mu sync.Mutex

	teams    map[uuid.UUID]bool
	playerTm map[uuid.UUID]uuid.UUID
	matches  map[uuid.UUID]*model.Match
	events   []*model.MatchEvent
	captains map[uuid.UUID][]uuid.UUID
	potm     map[uuid.UUID]uuid.UUID
	rewards  []*model.Reward
	grants   []*model.PlayerReward

	failCreate  map[uuid.UUID]error
	failCatalog error
	failEvents  error
	createCalls int
}

func newMemStore() *memStore {
	return &memStore{
		teams:      make(map[uuid.UUID]bool),
		playerTm:   make(map[uuid.UUID]uuid.UUID),
		matches:    make(map[uuid.UUID]*model.Match),
		captains:   make(map[uuid.UUID][]uuid.UUID),
		potm:       make(map[uuid.UUID]uuid.UUID),
		failCreate: make(map[uuid.UUID]error),
	}
}

func (s *memStore) deps() Dependencies {
	return Dependencies{Matches: s, Events: s, Catalog: catalogByID{s}, Grants: s, Players: s}
}

func (s *memStore) addTeam() uuid.UUID {
	id := uuid.New()
	s.teams[id] = true
	return id
}

func (s *memStore) addPlayer(teamID uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.playerTm[id] = teamID
	return id
}

func (s *memStore) addMatch(teamID uuid.UUID, season string, status model.MatchStatus) uuid.UUID {
	id := uuid.New()
	s.matches[id] = &model.Match{
		ID:       id,
		TeamID:   teamID,
		Season:   season,
		Status:   status,
		IsActive: true,
	}
	return id
}

func (s *memStore) logEvents(matchID, playerID uuid.UUID, types ...model.EventType) {
	for _, et := range types {
		s.events = append(s.events, &model.MatchEvent{
			ID:        uuid.New(),
			MatchID:   matchID,
			PlayerID:  playerID,
			EventType: et,
		})
	}
}

func (s *memStore) addReward(rw *model.Reward) *model.Reward {
	rw.ID = uuid.New()
	s.rewards = append(s.rewards, rw)
	return rw
}

func (s *memStore) grantsFor(playerID uuid.UUID) []*model.PlayerReward {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.PlayerReward
	for _, g := range s.grants {
		if g.PlayerID == playerID {
			out = append(out, g)
		}
	}
	return out
}

func (s *memStore) GetByID(_ context.Context, matchID uuid.UUID) (*model.Match, error) {
	m, ok := s.matches[matchID]
	if !ok {
		return nil, repository.ErrMatchNotFound
	}
	return m, nil
}

func (s *memStore) GetPlayerOfMatch(_ context.Context, matchID uuid.UUID) (*uuid.UUID, error) {
	p, ok := s.potm[matchID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) ListCaptains(_ context.Context, matchID uuid.UUID) ([]uuid.UUID, error) {
	ids := append([]uuid.UUID(nil), s.captains[matchID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *memStore) CountCaptaincies(_ context.Context, playerID uuid.UUID) (int, error) {
	n := 0
	for _, caps := range s.captains {
		for _, c := range caps {
			if c == playerID {
				n++
			}
		}
	}
	return n, nil
}

func (s *memStore) ListCompletedIDs(_ context.Context, teamID uuid.UUID, season *string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, m := range s.matches {
		if m.TeamID != teamID || !m.IsCompleted() || !m.IsActive {
			continue
		}
		if season != nil && m.Season != *season {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (s *memStore) ListByMatch(_ context.Context, matchID uuid.UUID) ([]*model.MatchEvent, error) {
	if s.failEvents != nil {
		return nil, s.failEvents
	}
	var out []*model.MatchEvent
	for _, ev := range s.events {
		if ev.MatchID == matchID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *memStore) CountByPlayer(_ context.Context, playerID uuid.UUID, matchIDs []uuid.UUID) (map[model.EventType]int, error) {
	in := make(map[uuid.UUID]bool, len(matchIDs))
	for _, id := range matchIDs {
		in[id] = true
	}
	counts := make(map[model.EventType]int)
	for _, ev := range s.events {
		if ev.PlayerID == playerID && in[ev.MatchID] {
			counts[ev.EventType]++
		}
	}
	return counts, nil
}

func (s *memStore) List(_ context.Context) ([]*model.Reward, error) {
	if s.failCatalog != nil {
		return nil, s.failCatalog
	}
	return s.rewards, nil
}

func (s *memStore) GetRewardByID(rewardID uuid.UUID) (*model.Reward, error) {
	for _, rw := range s.rewards {
		if rw.ID == rewardID {
			return rw, nil
		}
	}
	return nil, repository.ErrRewardNotFound
}

func (s *memStore) Exists(_ context.Context, playerID, rewardID uuid.UUID, matchID *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.PlayerID != playerID || g.RewardID != rewardID {
			continue
		}
		if matchID == nil || (g.MatchID != nil && *g.MatchID == *matchID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(_ context.Context, g *model.PlayerReward) (*model.PlayerReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++

	if err := s.failCreate[g.RewardID]; err != nil {
		return nil, err
	}

	for _, existing := range s.grants {
		if existing.PlayerID != g.PlayerID || existing.RewardID != g.RewardID {
			continue
		}
		switch {
		case g.MatchID == nil && existing.MatchID == nil:
			return nil, repository.ErrGrantExists
		case g.MatchID != nil && existing.MatchID != nil && *g.MatchID == *existing.MatchID:
			return nil, repository.ErrGrantExists
		}
	}

	created := *g
	created.ID = uuid.New()
	created.AchievedDate = time.Now()
	s.grants = append(s.grants, &created)
	return &created, nil
}

func (s *memStore) GetPlayerTeamID(_ context.Context, playerID uuid.UUID) (uuid.UUID, error) {
	teamID, ok := s.playerTm[playerID]
	if !ok {
		return uuid.Nil, repository.ErrPlayerNotFound
	}
	return teamID, nil
}

// catalogByID adapts memStore's reward lookup to the Catalog interface, whose
// GetByID collides with the Matches method of the same name.
type catalogByID struct{ *memStore }

func (c catalogByID) GetByID(_ context.Context, rewardID uuid.UUID) (*model.Reward, error) {
	return c.GetRewardByID(rewardID)
}

var errStorage = errors.New("storage unavailable")

func intPtr(v int) *int { return &v }

func eventPtr(et model.EventType) *model.EventType { return &et }
