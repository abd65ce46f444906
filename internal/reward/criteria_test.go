package reward

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"squad-rewards/internal/model"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		reward *model.Reward
		want   Criteria
	}{
		{
			name: "single match",
			reward: &model.Reward{
				CriteriaScope:     model.ScopeSingleMatch,
				CriteriaEventType: eventPtr(model.EventGoal),
				CriteriaThreshold: 3,
			},
			want: SingleMatch{EventType: model.EventGoal, Threshold: 3},
		},
		{
			name: "season",
			reward: &model.Reward{
				CriteriaScope:     model.ScopeSeason,
				CriteriaEventType: eventPtr(model.EventSave),
				CriteriaThreshold: 10,
			},
			want: Season{EventType: model.EventSave, Threshold: 10},
		},
		{
			name: "all rounder",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					Goal: intPtr(1), Assist: intPtr(1), Tackle: intPtr(2),
				}},
			},
			want: AllRounder{Minimums: map[model.EventType]int{
				model.EventGoal: 1, model.EventAssist: 1, model.EventTackle: 2,
			}},
		},
		{
			name: "all rounder with saves",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					Goal: intPtr(1), Assist: intPtr(1), Tackle: intPtr(1), Save: intPtr(1),
				}},
			},
			want: AllRounder{Minimums: map[model.EventType]int{
				model.EventGoal: 1, model.EventAssist: 1, model.EventTackle: 1, model.EventSave: 1,
			}},
		},
		{
			name: "season total",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					TotalEvents: intPtr(50),
				}},
			},
			want: SeasonTotal{Total: 50},
		},
		{
			name: "captain and potm defaults to per match",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					CaptainAndPOTMSameMatch: true,
				}},
			},
			want: CaptainAndPOTM{GrantScope: model.GrantPerMatch},
		},
		{
			name: "captain count defaults to cumulative",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					CaptainCount: intPtr(5),
				}},
			},
			want: CaptainCount{Count: 5, GrantScope: model.GrantCumulative},
		},
		{
			name: "captain count with explicit grant scope",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					CaptainCount: intPtr(1),
					GrantScope:   model.GrantPerMatch,
				}},
			},
			want: CaptainCount{Count: 1, GrantScope: model.GrantPerMatch},
		},
		{
			name: "two of three all rounder fields is not a composite",
			reward: &model.Reward{
				CriteriaScope: model.ScopeSpecial,
				Metadata: model.RewardMetadata{Requires: &model.Requirements{
					Goal: intPtr(1), Assist: intPtr(1),
				}},
			},
			want: Unsupported{Reason: "special reward with unrecognised requirements"},
		},
		{
			name:   "special without requirements",
			reward: &model.Reward{CriteriaScope: model.ScopeSpecial},
			want:   Unsupported{Reason: "special reward without requirements"},
		},
		{
			name:   "single match without event type",
			reward: &model.Reward{CriteriaScope: model.ScopeSingleMatch, CriteriaThreshold: 1},
			want:   Unsupported{Reason: "single_match reward without event type"},
		},
		{
			name: "career",
			reward: &model.Reward{
				CriteriaScope:     model.ScopeCareer,
				CriteriaEventType: eventPtr(model.EventGoal),
				CriteriaThreshold: 100,
			},
			want: Unsupported{Reason: "career scope has no evaluator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.reward.ID = uuid.New()
			assert.Equal(t, tt.want, Decode(tt.reward))
		})
	}
}

func TestDecodeLeadership_SameMatchWins(t *testing.T) {
	c, ok := decodeLeadership(&model.Requirements{
		CaptainAndPOTMSameMatch: true,
		CaptainCount:            intPtr(3),
	})
	assert.True(t, ok)
	assert.Equal(t, CaptainAndPOTM{GrantScope: model.GrantPerMatch}, c)

	_, ok = decodeLeadership(&model.Requirements{CaptainCount: intPtr(0)})
	assert.False(t, ok)

	_, ok = decodeLeadership(nil)
	assert.False(t, ok)
}

func TestGroupEvents(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	events := []*model.MatchEvent{
		{PlayerID: a, EventType: model.EventGoal},
		{PlayerID: b, EventType: model.EventTackle},
		{PlayerID: a, EventType: model.EventGoal},
		{PlayerID: a, EventType: model.EventAssist},
		{PlayerID: b, EventType: "yellow_card"},
	}

	groups := GroupEvents(events)
	assert.Len(t, groups, 2)

	byID := map[uuid.UUID]*PlayerEventCounts{}
	for _, g := range groups {
		byID[g.PlayerID] = g
	}

	assert.Equal(t, 3, byID[a].Total)
	assert.Equal(t, 2, byID[a].Count(model.EventGoal))
	assert.Equal(t, 1, byID[a].Count(model.EventAssist))
	assert.Equal(t, 0, byID[a].Count(model.EventSave))

	assert.Equal(t, 2, byID[b].Total)
	assert.Equal(t, 1, byID[b].Count(model.EventTackle))

	assert.Less(t, groups[0].PlayerID.String(), groups[1].PlayerID.String())
}

func TestGroupEvents_Empty(t *testing.T) {
	assert.Empty(t, GroupEvents(nil))
}
