package reward

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

// Result is the report of one evaluation run. Granted holds every grant that
// was written, including when Success is false.
type Result struct {
	Success bool                  `json:"success"`
	Granted []*model.PlayerReward `json:"granted_rewards"`
	Errors  []string              `json:"errors"`
}

// Options tunes the evaluator.
type Options struct {
	// SeasonFilter limits season aggregates to matches recorded under the
	// evaluated match's season string.
	SeasonFilter bool
	// Concurrency is the number of players evaluated in parallel. Values
	// below 2 evaluate sequentially.
	Concurrency int
}

// Evaluator grants catalog rewards after a match is completed.
// It holds no state between runs and is safe for concurrent use.
type Evaluator struct {
	deps Dependencies
	opts Options
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(deps Dependencies, opts Options) *Evaluator {
	if deps.Matches == nil || deps.Events == nil || deps.Catalog == nil || deps.Grants == nil || deps.Players == nil {
		panic("NewEvaluator requires all dependencies")
	}
	return &Evaluator{deps: deps, opts: opts}
}

type catalogEntry struct {
	reward   *model.Reward
	criteria Criteria
}

// run carries the state of a single Evaluate call.
type run struct {
	deps     Dependencies
	match    *model.Match
	potm     *uuid.UUID
	catalog  []catalogEntry
	season   *seasonAggregator
	granted  []*model.PlayerReward
	errs     []string
	resultMu sync.Mutex
}

// Evaluate checks every catalog reward for every player with events in the
// match, then leadership rewards for the match captain, and writes one grant
// per newly satisfied reward. Re-running it for the same match only grants
// what is missing. Expected failures are reported in the result, never panics.
func (e *Evaluator) Evaluate(ctx context.Context, matchID uuid.UUID) *Result {
	match, err := e.deps.Matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return failed("Match not found")
		}
		log.Error().Err(err).Str("match_id", matchID.String()).Msg("Failed to load match")
		return failed("Error fetching match")
	}

	if !match.IsCompleted() {
		return failed("Match must be completed before evaluating rewards")
	}

	events, err := e.deps.Events.ListByMatch(ctx, matchID)
	if err != nil {
		log.Error().Err(err).Str("match_id", matchID.String()).Msg("Failed to load match events")
		return failed("Error fetching match events")
	}

	potm, err := e.deps.Matches.GetPlayerOfMatch(ctx, matchID)
	if err != nil {
		log.Error().Err(err).Str("match_id", matchID.String()).Msg("Failed to load player of the match")
		return failed("Error fetching player of the match")
	}

	captains, err := e.deps.Matches.ListCaptains(ctx, matchID)
	if err != nil {
		log.Error().Err(err).Str("match_id", matchID.String()).Msg("Failed to load match roster")
		return failed("Error fetching match roster")
	}

	rewards, err := e.deps.Catalog.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load rewards catalog")
		return failed("Error fetching rewards catalog")
	}

	var season *string
	if e.opts.SeasonFilter {
		season = &match.Season
	}

	r := &run{
		deps:    e.deps,
		match:   match,
		potm:    potm,
		catalog: decodeCatalog(rewards),
		season:  newSeasonAggregator(e.deps, season),
	}

	players := GroupEvents(events)
	if e.opts.Concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(e.opts.Concurrency)
		for _, pc := range players {
			pc := pc
			g.Go(func() error {
				r.evaluatePlayer(ctx, pc)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, pc := range players {
			r.evaluatePlayer(ctx, pc)
		}
	}

	if len(captains) > 1 {
		log.Warn().
			Str("match_id", matchID.String()).
			Int("captains", len(captains)).
			Msg("Multiple captains flagged, using the first")
	}
	if len(captains) > 0 {
		r.evaluateLeadership(ctx, captains[0])
	}

	res := r.result()

	log.Info().
		Str("match_id", matchID.String()).
		Int("players", len(players)).
		Int("rewards", len(rewards)).
		Int("granted", len(res.Granted)).
		Int("errors", len(res.Errors)).
		Msg("Reward evaluation finished")

	return res
}

func failed(msg string) *Result {
	return &Result{
		Success: false,
		Granted: []*model.PlayerReward{},
		Errors:  []string{msg},
	}
}

func decodeCatalog(rewards []*model.Reward) []catalogEntry {
	entries := make([]catalogEntry, 0, len(rewards))
	for _, rw := range rewards {
		c := Decode(rw)
		if u, ok := c.(Unsupported); ok {
			log.Debug().Str("reward", rw.Name).Str("reason", u.Reason).Msg("Reward has no event based evaluator")
		}
		entries = append(entries, catalogEntry{reward: rw, criteria: c})
	}
	return entries
}

func (r *run) evaluatePlayer(ctx context.Context, counts *PlayerEventCounts) {
	for _, entry := range r.catalog {
		switch entry.criteria.(type) {
		case CaptainAndPOTM, CaptainCount, Unsupported:
			// granted by evaluateLeadership or never
			continue
		}
		r.evaluateReward(ctx, counts, entry)
	}
}

func (r *run) evaluateReward(ctx context.Context, counts *PlayerEventCounts, entry catalogEntry) {
	rw := entry.reward

	var scopeMatch *uuid.UUID
	if rw.CriteriaScope == model.ScopeSingleMatch {
		scopeMatch = &r.match.ID
	}

	held, err := r.deps.Grants.Exists(ctx, counts.PlayerID, rw.ID, scopeMatch)
	if err != nil {
		r.fail(err, fmt.Sprintf("Error checking reward %s for player %s", rw.Name, counts.PlayerID))
		return
	}
	if held {
		return
	}

	ok, actual, err := r.satisfied(ctx, counts, entry.criteria)
	if err != nil {
		r.fail(err, fmt.Sprintf("Error evaluating reward %s for player %s", rw.Name, counts.PlayerID))
		return
	}
	if !ok {
		return
	}

	r.grant(ctx, counts.PlayerID, rw, scopeMatch, actual)
}

// satisfied evaluates event based criteria and returns the count to record
// on the grant.
func (r *run) satisfied(ctx context.Context, counts *PlayerEventCounts, c Criteria) (bool, int, error) {
	switch c := c.(type) {
	case SingleMatch:
		n := counts.Count(c.EventType)
		return n >= c.Threshold, n, nil

	case Season:
		t, err := r.season.tally(ctx, counts.PlayerID)
		if err != nil {
			return false, 0, err
		}
		n := t.count(c.EventType)
		return n >= c.Threshold, n, nil

	case AllRounder:
		for et, min := range c.Minimums {
			if counts.Count(et) < min {
				return false, 0, nil
			}
		}
		return true, counts.Total, nil

	case SeasonTotal:
		t, err := r.season.tally(ctx, counts.PlayerID)
		if err != nil {
			return false, 0, err
		}
		return t.total >= c.Total, counts.Total, nil
	}

	return false, 0, nil
}

// evaluateLeadership grants leadership rewards to the match captain. Captaincy
// alone can satisfy them, so the captain need not have logged events.
func (r *run) evaluateLeadership(ctx context.Context, captainID uuid.UUID) {
	var captainCount *int

	for _, entry := range r.catalog {
		rw := entry.reward
		if rw.RewardType != model.RewardTypeLeadership {
			continue
		}

		c, ok := decodeLeadership(rw.Metadata.Requires)
		if !ok {
			continue
		}

		held, err := r.deps.Grants.Exists(ctx, captainID, rw.ID, nil)
		if err != nil {
			r.fail(err, fmt.Sprintf("Error checking leadership reward %s", rw.Name))
			continue
		}
		if held {
			continue
		}

		if captainCount == nil {
			n, err := r.deps.Matches.CountCaptaincies(ctx, captainID)
			if err != nil {
				r.fail(err, "Error counting captaincies")
				return
			}
			captainCount = &n
		}

		var (
			earned bool
			scope  model.GrantScope
		)
		switch c := c.(type) {
		case CaptainAndPOTM:
			earned = r.potm != nil && *r.potm == captainID
			scope = c.GrantScope
		case CaptainCount:
			earned = *captainCount >= c.Count
			scope = c.GrantScope
		}
		if !earned {
			continue
		}

		var matchID *uuid.UUID
		if scope == model.GrantPerMatch {
			matchID = &r.match.ID
		}
		r.grant(ctx, captainID, rw, matchID, *captainCount)
	}
}

func (r *run) grant(ctx context.Context, playerID uuid.UUID, rw *model.Reward, matchID *uuid.UUID, actual int) {
	created, err := r.deps.Grants.Create(ctx, &model.PlayerReward{
		PlayerID: playerID,
		RewardID: rw.ID,
		MatchID:  matchID,
		Metadata: model.GrantMetadata{ActualCount: actual},
	})
	if err != nil {
		if errors.Is(err, repository.ErrGrantExists) {
			log.Debug().
				Str("player_id", playerID.String()).
				Str("reward", rw.Name).
				Msg("Reward granted concurrently, skipping")
			return
		}
		r.fail(err, fmt.Sprintf("Error creating reward %s for player %s", rw.Name, playerID))
		return
	}

	log.Info().
		Str("player_id", playerID.String()).
		Str("reward", rw.Name).
		Int("actual_count", actual).
		Msg("Reward granted")

	r.resultMu.Lock()
	r.granted = append(r.granted, created)
	r.resultMu.Unlock()
}

func (r *run) fail(err error, msg string) {
	log.Error().Err(err).Str("match_id", r.match.ID.String()).Msg(msg)

	r.resultMu.Lock()
	r.errs = append(r.errs, msg)
	r.resultMu.Unlock()
}

func (r *run) result() *Result {
	r.resultMu.Lock()
	defer r.resultMu.Unlock()

	granted := make([]*model.PlayerReward, len(r.granted))
	copy(granted, r.granted)
	sort.SliceStable(granted, func(i, j int) bool {
		return granted[i].PlayerID.String() < granted[j].PlayerID.String()
	})

	errs := make([]string, len(r.errs))
	copy(errs, r.errs)
	sort.Strings(errs)

	return &Result{
		Success: len(errs) == 0,
		Granted: granted,
		Errors:  errs,
	}
}
