// Package model defines the data models for the squad rewards service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

// Match statuses.
const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// EventType is the kind of a logged match event.
// Catalog criteria only count goal, assist, tackle and save, but the event
// log may hold any type and all of them count toward total-event criteria.
type EventType string

// Event types that reward criteria can target.
const (
	EventGoal   EventType = "goal"
	EventAssist EventType = "assist"
	EventTackle EventType = "tackle"
	EventSave   EventType = "save"
)

// CriteriaEventTypes returns the event types a catalog entry may count.
func CriteriaEventTypes() []EventType {
	return []EventType{EventGoal, EventAssist, EventTackle, EventSave}
}

// Valid reports whether t is one of the criteria event types.
func (t EventType) Valid() bool {
	for _, et := range CriteriaEventTypes() {
		if et == t {
			return true
		}
	}
	return false
}

// Team is a squad managed for one season.
type Team struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ManagerID uuid.UUID `json:"manager_id" db:"manager_id"`
	Name      string    `json:"name" db:"name"`
	AgeGroup  *string   `json:"age_group,omitempty" db:"age_group"`
	Season    string    `json:"season" db:"season"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Player is a squad member.
type Player struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TeamID      uuid.UUID `json:"team_id" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	Position    *string   `json:"position,omitempty" db:"position"`
	SquadNumber *int      `json:"squad_number,omitempty" db:"squad_number"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Match is a fixture played by a team.
type Match struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TeamID       uuid.UUID   `json:"team_id" db:"team_id"`
	Season       string      `json:"season" db:"season"`
	OpponentName string      `json:"opponent_name" db:"opponent_name"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	Status       MatchStatus `json:"status" db:"status"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether rewards may be evaluated for the match.
func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

// MatchEvent is an immutable logged event.
type MatchEvent struct {
	ID        uuid.UUID `json:"id" db:"id"`
	MatchID   uuid.UUID `json:"match_id" db:"match_id"`
	PlayerID  uuid.UUID `json:"player_id" db:"player_id"`
	EventType EventType `json:"event_type" db:"event_type"`
	Period    *int      `json:"period,omitempty" db:"period"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RewardType classifies a catalog entry for display and leaderboards.
type RewardType string

// Reward types.
const (
	RewardTypeMatch      RewardType = "match"
	RewardTypeSeason     RewardType = "season"
	RewardTypeLeadership RewardType = "leadership"
)

// Valid reports whether t is a known reward type.
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeMatch, RewardTypeSeason, RewardTypeLeadership:
		return true
	}
	return false
}

// CriteriaScope selects the evaluation strategy of a catalog entry.
type CriteriaScope string

// Criteria scopes.
const (
	ScopeSingleMatch CriteriaScope = "single_match"
	ScopeSeason      CriteriaScope = "season"
	ScopeCareer      CriteriaScope = "career"
	ScopeSpecial     CriteriaScope = "special"
)

// Valid reports whether s is a known criteria scope.
func (s CriteriaScope) Valid() bool {
	switch s {
	case ScopeSingleMatch, ScopeSeason, ScopeCareer, ScopeSpecial:
		return true
	}
	return false
}

// GrantScope controls whether a leadership grant is tied to the match it was earned in.
type GrantScope string

// Grant scopes for leadership criteria.
const (
	GrantPerMatch   GrantScope = "per_match"
	GrantCumulative GrantScope = "cumulative"
)

// Requirements is the structured rule attached to special and leadership rewards.
type Requirements struct {
	Goal                    *int       `json:"goal,omitempty"`
	Assist                  *int       `json:"assist,omitempty"`
	Tackle                  *int       `json:"tackle,omitempty"`
	Save                    *int       `json:"save,omitempty"`
	TotalEvents             *int       `json:"total_events,omitempty"`
	CaptainCount            *int       `json:"captain_count,omitempty"`
	CaptainAndPOTMSameMatch bool       `json:"captain_and_potm_same_match,omitempty"`
	GrantScope              GrantScope `json:"grant_scope,omitempty"`
}

// RewardMetadata is the jsonb metadata column of a catalog entry.
type RewardMetadata struct {
	Requires *Requirements `json:"requires,omitempty"`
}

// Reward is a catalog entry. Rows are immutable once created.
type Reward struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	Name              string         `json:"name" db:"name"`
	Description       string         `json:"description" db:"description"`
	Icon              string         `json:"icon" db:"icon"`
	RewardType        RewardType     `json:"reward_type" db:"reward_type"`
	CriteriaScope     CriteriaScope  `json:"criteria_scope" db:"criteria_scope"`
	CriteriaEventType *EventType     `json:"criteria_event_type" db:"criteria_event_type"`
	CriteriaThreshold int            `json:"criteria_threshold" db:"criteria_threshold"`
	Metadata          RewardMetadata `json:"metadata" db:"metadata"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// GrantMetadata is the jsonb metadata column of a grant.
type GrantMetadata struct {
	ActualCount int `json:"actual_count"`
}

// PlayerReward is a grant: a player earning a catalog reward.
type PlayerReward struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	PlayerID     uuid.UUID     `json:"player_id" db:"player_id"`
	RewardID     uuid.UUID     `json:"reward_id" db:"reward_id"`
	MatchID      *uuid.UUID    `json:"match_id" db:"match_id"`
	AchievedDate time.Time     `json:"achieved_date" db:"achieved_date"`
	Metadata     GrantMetadata `json:"metadata" db:"metadata"`
}

// RewardWithProgress annotates a catalog entry with a player's standing.
type RewardWithProgress struct {
	Reward
	IsEarned      bool       `json:"is_earned"`
	EarnedAt      *time.Time `json:"earned_at,omitempty"`
	Progress      int        `json:"progress"`
	ProgressTotal int        `json:"progress_total"`
}

// LeaderboardEntry is one row of a team rewards leaderboard.
type LeaderboardEntry struct {
	PlayerID          uuid.UUID `json:"player_id" db:"player_id"`
	PlayerName        string    `json:"player_name" db:"player_name"`
	SquadNumber       *int      `json:"squad_number" db:"squad_number"`
	TotalRewards      int       `json:"total_rewards" db:"total_rewards"`
	MatchRewards      int       `json:"match_rewards" db:"match_rewards"`
	SeasonRewards     int       `json:"season_rewards" db:"season_rewards"`
	LeadershipRewards int       `json:"leadership_rewards" db:"leadership_rewards"`
}
