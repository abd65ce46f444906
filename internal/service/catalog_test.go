package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squad-rewards/internal/model"
	"squad-rewards/internal/repository"
)

type fakeRewards struct {
	rewards []*model.Reward
	err     error
}

func (f *fakeRewards) Create(_ context.Context, rw *model.Reward) (*model.Reward, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := *rw
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	f.rewards = append(f.rewards, &created)
	return &created, nil
}

func (f *fakeRewards) List(context.Context) ([]*model.Reward, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rewards, nil
}

func (f *fakeRewards) GetByID(_ context.Context, rewardID uuid.UUID) (*model.Reward, error) {
	for _, rw := range f.rewards {
		if rw.ID == rewardID {
			return rw, nil
		}
	}
	return nil, repository.ErrRewardNotFound
}

func (f *fakeRewards) Delete(_ context.Context, rewardID uuid.UUID) error {
	for i, rw := range f.rewards {
		if rw.ID == rewardID {
			f.rewards = append(f.rewards[:i], f.rewards[i+1:]...)
			return nil
		}
	}
	return repository.ErrRewardNotFound
}

// fakeEarned maps reward IDs to their grant counts.
type fakeEarned map[uuid.UUID]int

func (f fakeEarned) CountByReward(_ context.Context, rewardID uuid.UUID) (int, error) {
	return f[rewardID], nil
}

func intPtr(v int) *int { return &v }

func eventPtr(et model.EventType) *model.EventType { return &et }

func validInput() CreateRewardInput {
	return CreateRewardInput{
		Name:              "Hat Trick",
		Description:       "Score three goals in one match",
		Icon:              "⚽",
		RewardType:        model.RewardTypeMatch,
		CriteriaScope:     model.ScopeSingleMatch,
		CriteriaEventType: eventPtr(model.EventGoal),
		CriteriaThreshold: 3,
	}
}

func TestCreateReward(t *testing.T) {
	store := &fakeRewards{}
	svc := NewCatalogService(store, fakeEarned{})

	in := validInput()
	in.Name = "  Hat Trick  "

	rw, err := svc.CreateReward(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rw.ID)
	assert.Equal(t, "Hat Trick", rw.Name)
	assert.Equal(t, model.EventGoal, *rw.CriteriaEventType)
	assert.Len(t, store.rewards, 1)
}

func TestCreateReward_Special(t *testing.T) {
	svc := NewCatalogService(&fakeRewards{}, fakeEarned{})

	in := validInput()
	in.Name = "Double Honor"
	in.RewardType = model.RewardTypeLeadership
	in.CriteriaScope = model.ScopeSpecial
	in.CriteriaThreshold = 1
	in.Requires = &model.Requirements{CaptainAndPOTMSameMatch: true, GrantScope: model.GrantPerMatch}

	rw, err := svc.CreateReward(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, rw.CriteriaEventType)
	require.NotNil(t, rw.Metadata.Requires)
	assert.True(t, rw.Metadata.Requires.CaptainAndPOTMSameMatch)
}

func TestCreateReward_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRewardInput)
		want   string
	}{
		{"empty name", func(in *CreateRewardInput) { in.Name = "   " }, "name"},
		{"long name", func(in *CreateRewardInput) { in.Name = strings.Repeat("a", 101) }, "name"},
		{"empty description", func(in *CreateRewardInput) { in.Description = "" }, "description"},
		{"long description", func(in *CreateRewardInput) { in.Description = strings.Repeat("d", 501) }, "description"},
		{"long icon", func(in *CreateRewardInput) { in.Icon = "abcdefghijk" }, "icon"},
		{"unknown reward type", func(in *CreateRewardInput) { in.RewardType = "career" }, "reward_type"},
		{"unknown scope", func(in *CreateRewardInput) { in.CriteriaScope = "weekly" }, "criteria_scope"},
		{"unknown event type", func(in *CreateRewardInput) { in.CriteriaEventType = eventPtr("foul") }, "criteria_event_type"},
		{"zero threshold", func(in *CreateRewardInput) { in.CriteriaThreshold = 0 }, "criteria_threshold"},
		{"negative threshold", func(in *CreateRewardInput) { in.CriteriaThreshold = -2 }, "criteria_threshold"},
		{"missing event type", func(in *CreateRewardInput) { in.CriteriaEventType = nil }, "criteria_event_type"},
		{"special without requires", func(in *CreateRewardInput) {
			in.CriteriaScope = model.ScopeSpecial
		}, "special rewards"},
		{"special with partial composite", func(in *CreateRewardInput) {
			in.CriteriaScope = model.ScopeSpecial
			in.Requires = &model.Requirements{Goal: intPtr(1), Assist: intPtr(1)}
		}, "special rewards"},
		{"unknown grant scope", func(in *CreateRewardInput) {
			in.RewardType = model.RewardTypeLeadership
			in.CriteriaScope = model.ScopeSpecial
			in.Requires = &model.Requirements{CaptainCount: intPtr(3), GrantScope: "forever"}
		}, "grant_scope"},
		{"captain count on a season reward", func(in *CreateRewardInput) {
			in.RewardType = model.RewardTypeSeason
			in.CriteriaScope = model.ScopeSpecial
			in.Requires = &model.Requirements{CaptainCount: intPtr(10)}
		}, "reward_type leadership"},
		{"captain and potm on a match reward", func(in *CreateRewardInput) {
			in.CriteriaScope = model.ScopeSpecial
			in.Requires = &model.Requirements{CaptainAndPOTMSameMatch: true}
		}, "reward_type leadership"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRewards{}
			in := validInput()
			tt.mutate(&in)

			_, err := NewCatalogService(store, fakeEarned{}).CreateReward(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidReward)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, store.rewards)
		})
	}
}

func TestCreateReward_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewCatalogService(&fakeRewards{err: boom}, fakeEarned{}).CreateReward(context.Background(), validInput())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidReward)
}

func TestListRewards(t *testing.T) {
	store := &fakeRewards{}
	svc := NewCatalogService(store, fakeEarned{})
	_, err := svc.CreateReward(context.Background(), validInput())
	require.NoError(t, err)

	rewards, err := svc.ListRewards(context.Background())
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestGetReward(t *testing.T) {
	store := &fakeRewards{}
	svc := NewCatalogService(store, fakeEarned{})
	created, err := svc.CreateReward(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.GetReward(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hat Trick", got.Name)

	_, err = svc.GetReward(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrRewardNotFound)
}

func TestDeleteReward(t *testing.T) {
	store := &fakeRewards{}
	earned := fakeEarned{}
	svc := NewCatalogService(store, earned)

	unused, err := svc.CreateReward(context.Background(), validInput())
	require.NoError(t, err)
	popular, err := svc.CreateReward(context.Background(), validInput())
	require.NoError(t, err)
	earned[popular.ID] = 3

	t.Run("earned reward is kept", func(t *testing.T) {
		err := svc.DeleteReward(context.Background(), popular.ID)
		assert.ErrorIs(t, err, repository.ErrRewardEarned)
		assert.Contains(t, err.Error(), "3 player(s)")
		_, err = store.GetByID(context.Background(), popular.ID)
		assert.NoError(t, err)
	})

	t.Run("unearned reward is removed", func(t *testing.T) {
		require.NoError(t, svc.DeleteReward(context.Background(), unused.ID))
		_, err := store.GetByID(context.Background(), unused.ID)
		assert.ErrorIs(t, err, repository.ErrRewardNotFound)
	})

	t.Run("unknown reward", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteReward(context.Background(), uuid.New()), repository.ErrRewardNotFound)
	})

	assert.Len(t, store.rewards, 1)
}
