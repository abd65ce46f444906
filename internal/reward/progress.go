package reward

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

// Progress is a player's advance toward a reward they have not earned yet.
type Progress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// Calculator computes reward progress. It never grants anything.
type Calculator struct {
	deps         Dependencies
	seasonFilter bool
}

// NewCalculator creates a new Calculator.
func NewCalculator(deps Dependencies, seasonFilter bool) *Calculator {
	return &Calculator{deps: deps, seasonFilter: seasonFilter}
}

// Progress returns current/target for one reward. Only accumulating rules
// report a current value: season aggregates, season totals and captain
// counts. An unknown reward yields {0, 0}.
func (c *Calculator) Progress(ctx context.Context, playerID, rewardID uuid.UUID, season string) (Progress, error) {
	rw, err := c.deps.Catalog.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, repository.ErrRewardNotFound) {
			return Progress{}, nil
		}
		return Progress{}, err
	}
	return c.ProgressFor(ctx, playerID, rw, season)
}

// ProgressFor is Progress for an already loaded reward.
func (c *Calculator) ProgressFor(ctx context.Context, playerID uuid.UUID, rw *model.Reward, season string) (Progress, error) {
	p := Progress{Target: rw.CriteriaThreshold}

	agg := newSeasonAggregator(c.deps, c.seasonOf(season))

	switch rw.CriteriaScope {
	case model.ScopeSeason:
		if rw.CriteriaEventType == nil {
			return p, nil
		}
		t, err := agg.tally(ctx, playerID)
		if err != nil {
			return Progress{}, err
		}
		p.Current = t.count(*rw.CriteriaEventType)

	case model.ScopeSpecial:
		req := rw.Metadata.Requires
		if req == nil {
			return p, nil
		}
		if positive(req.TotalEvents) {
			t, err := agg.tally(ctx, playerID)
			if err != nil {
				return Progress{}, err
			}
			p.Current = t.total
		}
		if positive(req.CaptainCount) {
			n, err := c.deps.Matches.CountCaptaincies(ctx, playerID)
			if err != nil {
				return Progress{}, err
			}
			p.Current = n
		}
	}

	return p, nil
}

func (c *Calculator) seasonOf(season string) *string {
	if !c.seasonFilter || season == "" {
		return nil
	}
	return &season
}
