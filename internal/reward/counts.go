package reward

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
)

// PlayerEventCounts is one player's tally of events within a single match.
type PlayerEventCounts struct {
	PlayerID uuid.UUID
	Total    int
	ByType   map[model.EventType]int
}

// Count returns the number of events of the given type.
func (c *PlayerEventCounts) Count(t model.EventType) int {
	return c.ByType[t]
}

// GroupEvents tallies match events per player. The result is ordered by player ID.
func GroupEvents(events []*model.MatchEvent) []*PlayerEventCounts {
	byPlayer := make(map[uuid.UUID]*PlayerEventCounts)
	for _, ev := range events {
		c, ok := byPlayer[ev.PlayerID]
		if !ok {
			c = &PlayerEventCounts{
				PlayerID: ev.PlayerID,
				ByType:   make(map[model.EventType]int),
			}
			byPlayer[ev.PlayerID] = c
		}
		c.ByType[ev.EventType]++
		c.Total++
	}

	out := make([]*PlayerEventCounts, 0, len(byPlayer))
	for _, c := range byPlayer {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].PlayerID[:], out[j].PlayerID[:]) < 0
	})
	return out
}
