// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

// ErrInvalidReward wraps every catalog validation failure.
var ErrInvalidReward = errors.New("invalid reward")

var validate = validator.New(validator.WithRequiredStructEnabled())

// EarnedError reports a delete refused because players hold the reward.
type EarnedError struct {
	Players int
}

func (e *EarnedError) Error() string {
	return fmt.Sprintf("%d player(s) have already earned it", e.Players)
}

func (e *EarnedError) Unwrap() error { return repository.ErrRewardEarned }

// RewardStore persists catalog entries.
type RewardStore interface {
	Create(ctx context.Context, rw *model.Reward) (*model.Reward, error)
	GetByID(ctx context.Context, rewardID uuid.UUID) (*model.Reward, error)
	List(ctx context.Context) ([]*model.Reward, error)
	Delete(ctx context.Context, rewardID uuid.UUID) error
}

// EarnedCounter counts the grants of a catalog entry.
type EarnedCounter interface {
	CountByReward(ctx context.Context, rewardID uuid.UUID) (int, error)
}

// CreateRewardInput is an administrator's request to add a catalog entry.
type CreateRewardInput struct {
	Name              string              `json:"name" validate:"required,min=1,max=100"`
	Description       string              `json:"description" validate:"required,min=1,max=500"`
	Icon              string              `json:"icon" validate:"max=10"`
	RewardType        model.RewardType    `json:"reward_type" validate:"required,oneof=match season leadership"`
	CriteriaScope     model.CriteriaScope `json:"criteria_scope" validate:"required,oneof=single_match season career special"`
	CriteriaEventType *model.EventType    `json:"criteria_event_type" validate:"omitempty,oneof=goal assist tackle save"`
	CriteriaThreshold int                 `json:"criteria_threshold" validate:"required,min=1"`
	Requires          *model.Requirements `json:"requires"`
}

// CatalogService manages the reward catalog.
type CatalogService struct {
	rewards RewardStore
	grants  EarnedCounter
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(rewards RewardStore, grants EarnedCounter) *CatalogService {
	return &CatalogService{rewards: rewards, grants: grants}
}

// ListRewards returns the whole catalog ordered by reward type then threshold.
func (s *CatalogService) ListRewards(ctx context.Context) ([]*model.Reward, error) {
	rewards, err := s.rewards.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// GetReward returns one catalog entry.
// Returns repository.ErrRewardNotFound if it does not exist.
func (s *CatalogService) GetReward(ctx context.Context, rewardID uuid.UUID) (*model.Reward, error) {
	return s.rewards.GetByID(ctx, rewardID)
}

// DeleteReward retires a catalog entry nobody has earned. Earned entries are
// refused with repository.ErrRewardEarned so the grant ledger stays intact.
func (s *CatalogService) DeleteReward(ctx context.Context, rewardID uuid.UUID) error {
	rw, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return err
	}

	earned, err := s.grants.CountByReward(ctx, rewardID)
	if err != nil {
		return fmt.Errorf("failed to check reward grants: %w", err)
	}
	if earned > 0 {
		return &EarnedError{Players: earned}
	}

	// the store refuses the delete too if a grant lands in between
	if err := s.rewards.Delete(ctx, rewardID); err != nil {
		return err
	}

	log.Info().
		Str("reward_id", rewardID.String()).
		Str("name", rw.Name).
		Msg("Reward deleted")

	return nil
}

// CreateReward validates and stores a new catalog entry. Entries cannot be
// edited afterwards. Validation failures wrap ErrInvalidReward.
func (s *CatalogService) CreateReward(ctx context.Context, in CreateRewardInput) (*model.Reward, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if err := validateReward(in); err != nil {
		return nil, err
	}

	rw := &model.Reward{
		Name:              in.Name,
		Description:       in.Description,
		Icon:              in.Icon,
		RewardType:        in.RewardType,
		CriteriaScope:     in.CriteriaScope,
		CriteriaEventType: in.CriteriaEventType,
		CriteriaThreshold: in.CriteriaThreshold,
		Metadata:          model.RewardMetadata{Requires: in.Requires},
	}
	if in.CriteriaScope == model.ScopeSpecial {
		rw.CriteriaEventType = nil
	}

	created, err := s.rewards.Create(ctx, rw)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	log.Info().
		Str("reward_id", created.ID.String()).
		Str("name", created.Name).
		Str("scope", string(created.CriteriaScope)).
		Msg("Reward created")

	return created, nil
}

func validateReward(in CreateRewardInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidReward, fieldName(fe), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidReward, err)
	}

	if in.CriteriaScope != model.ScopeSpecial && in.CriteriaEventType == nil {
		return fmt.Errorf("%w: criteria_event_type is required for %s rewards", ErrInvalidReward, in.CriteriaScope)
	}

	if in.CriteriaScope == model.ScopeSpecial && !recognisedRequirements(in.Requires) {
		return fmt.Errorf("%w: special rewards need requires with goal, assist and tackle, total_events, captain_count or captain_and_potm_same_match", ErrInvalidReward)
	}

	if in.CriteriaScope == model.ScopeSpecial && captaincyRequirements(in.Requires) && in.RewardType != model.RewardTypeLeadership {
		return fmt.Errorf("%w: captain_count and captain_and_potm_same_match require reward_type leadership", ErrInvalidReward)
	}

	if in.Requires != nil && in.Requires.GrantScope != "" &&
		in.Requires.GrantScope != model.GrantPerMatch && in.Requires.GrantScope != model.GrantCumulative {
		return fmt.Errorf("%w: unknown grant_scope %q", ErrInvalidReward, in.Requires.GrantScope)
	}

	return nil
}

func recognisedRequirements(req *model.Requirements) bool {
	if req == nil {
		return false
	}
	pos := func(v *int) bool { return v != nil && *v > 0 }
	switch {
	case pos(req.Goal) && pos(req.Assist) && pos(req.Tackle):
		return true
	case pos(req.TotalEvents), pos(req.CaptainCount), req.CaptainAndPOTMSameMatch:
		return true
	}
	return false
}

func captaincyRequirements(req *model.Requirements) bool {
	return req != nil && ((req.CaptainCount != nil && *req.CaptainCount > 0) || req.CaptainAndPOTMSameMatch)
}

// fieldName maps a struct field to its JSON name for error messages.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "Icon":
		return "icon"
	case "RewardType":
		return "reward_type"
	case "CriteriaScope":
		return "criteria_scope"
	case "CriteriaEventType":
		return "criteria_event_type"
	case "CriteriaThreshold":
		return "criteria_threshold"
	}
	return fe.Field()
}
