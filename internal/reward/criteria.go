package reward

import (
	"fmt"

	"squad-rewards/internal/model"
)

// Criteria is the decoded rule of a catalog entry. Each shape of rule is its
// own type; evaluation switches on the concrete type.
type Criteria interface {
	criteria()
}

// SingleMatch is satisfied when a player logs Threshold events of EventType in one match.
type SingleMatch struct {
	EventType model.EventType
	Threshold int
}

// Season is satisfied when a player's season aggregate of EventType reaches Threshold.
type Season struct {
	EventType model.EventType
	Threshold int
}

// AllRounder is satisfied when every minimum is met within the same match.
type AllRounder struct {
	Minimums map[model.EventType]int
}

// SeasonTotal is satisfied when a player's season aggregate over all event types reaches Total.
type SeasonTotal struct {
	Total int
}

// CaptainAndPOTM is satisfied when the match captain is also player of the match.
type CaptainAndPOTM struct {
	GrantScope model.GrantScope
}

// CaptainCount is satisfied when a player has captained at least Count matches.
type CaptainCount struct {
	Count      int
	GrantScope model.GrantScope
}

// Unsupported is a catalog entry no evaluator recognises. It is never satisfied.
type Unsupported struct {
	Reason string
}

func (SingleMatch) criteria()    {}
func (Season) criteria()         {}
func (AllRounder) criteria()     {}
func (SeasonTotal) criteria()    {}
func (CaptainAndPOTM) criteria() {}
func (CaptainCount) criteria()   {}
func (Unsupported) criteria()    {}

// Decode turns a catalog entry into its criteria variant.
func Decode(rw *model.Reward) Criteria {
	switch rw.CriteriaScope {
	case model.ScopeSingleMatch:
		if rw.CriteriaEventType == nil {
			return Unsupported{Reason: "single_match reward without event type"}
		}
		return SingleMatch{EventType: *rw.CriteriaEventType, Threshold: rw.CriteriaThreshold}

	case model.ScopeSeason:
		if rw.CriteriaEventType == nil {
			return Unsupported{Reason: "season reward without event type"}
		}
		return Season{EventType: *rw.CriteriaEventType, Threshold: rw.CriteriaThreshold}

	case model.ScopeSpecial:
		return decodeSpecial(rw)

	case model.ScopeCareer:
		return Unsupported{Reason: "career scope has no evaluator"}
	}

	return Unsupported{Reason: fmt.Sprintf("unknown criteria scope %q", rw.CriteriaScope)}
}

func decodeSpecial(rw *model.Reward) Criteria {
	req := rw.Metadata.Requires
	if req == nil {
		return Unsupported{Reason: "special reward without requirements"}
	}

	if positive(req.Goal) && positive(req.Assist) && positive(req.Tackle) {
		minimums := map[model.EventType]int{
			model.EventGoal:   *req.Goal,
			model.EventAssist: *req.Assist,
			model.EventTackle: *req.Tackle,
		}
		if positive(req.Save) {
			minimums[model.EventSave] = *req.Save
		}
		return AllRounder{Minimums: minimums}
	}

	if positive(req.TotalEvents) {
		return SeasonTotal{Total: *req.TotalEvents}
	}

	if c, ok := decodeLeadership(req); ok {
		return c
	}

	return Unsupported{Reason: "special reward with unrecognised requirements"}
}

// decodeLeadership recognises captain based requirements. When both are
// present the same-match rule wins.
func decodeLeadership(req *model.Requirements) (Criteria, bool) {
	if req == nil {
		return nil, false
	}
	if req.CaptainAndPOTMSameMatch {
		return CaptainAndPOTM{GrantScope: grantScopeOr(req.GrantScope, model.GrantPerMatch)}, true
	}
	if positive(req.CaptainCount) {
		return CaptainCount{
			Count:      *req.CaptainCount,
			GrantScope: grantScopeOr(req.GrantScope, model.GrantCumulative),
		}, true
	}
	return nil, false
}

func grantScopeOr(s, fallback model.GrantScope) model.GrantScope {
	switch s {
	case model.GrantPerMatch, model.GrantCumulative:
		return s
	}
	return fallback
}

func positive(v *int) bool {
	return v != nil && *v > 0
}
