package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkinblaze/checkinblaze/model"
)

func TestHeadcountCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Fire drill",
		TargetedUserIDs: model.UserIDSet{"a", "b"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "mgr", created.InitiatedByUserID)
	assert.Equal(t, "Manager", created.InitiatedByDisplayName)
	assert.Equal(t, model.CampaignActive, created.Status)
	assert.False(t, created.CreatedTimestamp.IsZero())
	assert.Empty(t, created.RespondedUserIDs)
	assert.Empty(t, created.NeedAssistanceUserIDs)
	assert.Empty(t, created.SafeUserIDs)

	logs, err := env.audit.GetForEntity(ctx, model.EntityHeadcountCampaign, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionHeadcountInitiated, logs[0].ActionType)
}

func TestHeadcountCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		TargetedUserIDs: model.UserIDSet{"a"},
	}, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title: "No targets",
	}, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHeadcountGetAbsent(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.headcount.Get(context.Background(), "mgr", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHeadcountRecordResponses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Fire drill",
		TargetedUserIDs: model.UserIDSet{"a", "b", "c"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	_, err = env.headcount.RecordResponse(ctx, "mgr", created.ID, "a", true)
	require.NoError(t, err)
	updated, err := env.headcount.RecordResponse(ctx, "mgr", created.ID, "b", false)
	require.NoError(t, err)

	assert.Equal(t, model.UserIDSet{"a", "b"}, updated.RespondedUserIDs)
	assert.Equal(t, model.UserIDSet{"a"}, updated.NeedAssistanceUserIDs)
	assert.Equal(t, model.UserIDSet{"b"}, updated.SafeUserIDs)
}

func TestHeadcountResponseMigration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Fire drill",
		TargetedUserIDs: model.UserIDSet{"a"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	_, err = env.headcount.RecordResponse(ctx, "mgr", created.ID, "a", true)
	require.NoError(t, err)
	updated, err := env.headcount.RecordResponse(ctx, "mgr", created.ID, "a", false)
	require.NoError(t, err)

	// The final state depends only on the last response.
	assert.Equal(t, model.UserIDSet{"a"}, updated.RespondedUserIDs)
	assert.Empty(t, updated.NeedAssistanceUserIDs)
	assert.Equal(t, model.UserIDSet{"a"}, updated.SafeUserIDs)
}

func TestHeadcountRecordResponseMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.headcount.RecordResponse(context.Background(), "mgr", "nope", "a", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHeadcountUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Fire drill",
		TargetedUserIDs: model.UserIDSet{"a"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	paused, err := env.headcount.UpdateStatus(ctx, "mgr", created.ID, model.CampaignPaused, "mgr", "Manager")
	require.NoError(t, err)
	assert.Equal(t, model.CampaignPaused, paused.Status)
	assert.Nil(t, paused.ExpiresTimestamp)

	completed, err := env.headcount.UpdateStatus(ctx, "mgr", created.ID, model.CampaignCompleted, "mgr", "Manager")
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCompleted, completed.Status)
	require.NotNil(t, completed.ExpiresTimestamp)
}

func TestHeadcountListActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	active, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Active drill",
		TargetedUserIDs: model.UserIDSet{"a"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	done, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Done drill",
		TargetedUserIDs: model.UserIDSet{"a"},
	}, "mgr", "Manager")
	require.NoError(t, err)
	_, err = env.headcount.UpdateStatus(ctx, "mgr", done.ID, model.CampaignCompleted, "mgr", "Manager")
	require.NoError(t, err)

	campaigns, err := env.headcount.ListActive(ctx, "mgr")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, active.ID, campaigns[0].ID)
}

func TestHeadcountListAllForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	initiated, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Mine",
		TargetedUserIDs: model.UserIDSet{"x"},
	}, "alice", "Alice")
	require.NoError(t, err)

	targeted, err := env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Targets alice",
		TargetedUserIDs: model.UserIDSet{"alice", "bob"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	_, err = env.headcount.Create(ctx, &model.HeadcountCampaign{
		Title:           "Unrelated",
		TargetedUserIDs: model.UserIDSet{"bob"},
	}, "mgr", "Manager")
	require.NoError(t, err)

	campaigns, err := env.headcount.ListAllForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, campaigns, 2)

	ids := []string{campaigns[0].ID, campaigns[1].ID}
	assert.Contains(t, ids, initiated.ID)
	assert.Contains(t, ids, targeted.ID)
}
