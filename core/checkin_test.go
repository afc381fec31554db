package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkinblaze/checkinblaze/model"
)

func TestCheckInCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID:          "u1",
		UserDisplayName: "User One",
	}, "u1")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Timestamp.IsZero())
	assert.Equal(t, model.StatusOK, created.Status)
	assert.Equal(t, model.StateSubmitted, created.State)
	assert.Equal(t, model.PrecisionCityWide, created.LocationPrecision)

	got, err := env.checkins.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "User One", got.UserDisplayName)
}

func TestCheckInCreateRequiresUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkins.Create(context.Background(), &model.CheckInRecord{}, "u1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckInCreateWritesAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID:          "u1",
		UserDisplayName: "User One",
	}, "manager")
	require.NoError(t, err)

	logs, err := env.audit.GetForEntity(ctx, model.EntityCheckInRecord, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionCheckIn, logs[0].ActionType)
	assert.Equal(t, "manager", logs[0].UserID)
	assert.Equal(t, "User One", logs[0].UserDisplayName)
	assert.NotEmpty(t, logs[0].NewState)
	assert.Empty(t, logs[0].PreviousState)
}

func TestCheckInGetAbsent(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.checkins.Get(context.Background(), "u1", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckInGetLatest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, offset := range []time.Duration{-2 * time.Hour, -time.Minute, -time.Hour} {
		_, err := env.checkins.Create(ctx, &model.CheckInRecord{
			ID:        []string{"old", "newest", "middle"}[i],
			UserID:    "u1",
			Timestamp: base.Add(offset),
		}, "u1")
		require.NoError(t, err)
	}

	latest, err := env.checkins.GetLatest(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "newest", latest.ID)
}

func TestCheckInGetLatestNone(t *testing.T) {
	env := newTestEnv(t)

	latest, err := env.checkins.GetLatest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCheckInHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().UTC()
	ids := []string{"t1", "t2", "t3"}
	for i, id := range ids {
		_, err := env.checkins.Create(ctx, &model.CheckInRecord{
			ID:        id,
			UserID:    "u1",
			Timestamp: base.Add(time.Duration(i-3) * time.Hour),
		}, "u1")
		require.NoError(t, err)
	}
	// Outside the 30-day window; must not appear.
	_, err := env.checkins.Create(ctx, &model.CheckInRecord{
		ID:        "stale",
		UserID:    "u1",
		Timestamp: base.Add(-31 * 24 * time.Hour),
	}, "u1")
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		records, err := env.checkins.GetHistory(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "t3", records[0].ID)
		assert.Equal(t, "t1", records[2].ID)
	})

	t.Run("truncated", func(t *testing.T) {
		records, err := env.checkins.GetHistory(ctx, "u1", 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "t3", records[0].ID)
	})
}

func TestCheckInUpdatePreservesImmutableFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lat := 12.5
	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID:          "u1",
		UserDisplayName: "User One",
		Latitude:        &lat,
	}, "u1")
	require.NoError(t, err)

	updated, err := env.checkins.Update(ctx, &model.CheckInRecord{
		ID:     created.ID,
		UserID: "u1",
		Notes:  "updated notes",
		Status: model.StatusNeedsAssistance,
		State:  model.StateSubmitted,
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "updated notes", updated.Notes)
	assert.Equal(t, model.StatusNeedsAssistance, updated.Status)
	// Identity and location survive the rewrite.
	assert.Equal(t, "User One", updated.UserDisplayName)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, lat, *updated.Latitude)
}

func TestCheckInUpdateMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkins.Update(context.Background(), &model.CheckInRecord{
		ID:     "nope",
		UserID: "u1",
	}, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcknowledgeAndResolveFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u1",
		Status: model.StatusNeedsAssistance,
	}, "u1")
	require.NoError(t, err)

	acked, err := env.checkins.Acknowledge(ctx, "u1", created.ID, "mgr", "Manager")
	require.NoError(t, err)
	assert.Equal(t, model.StateAcknowledged, acked.State)
	assert.Equal(t, "mgr", acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	// Acknowledging twice is an invalid transition.
	_, err = env.checkins.Acknowledge(ctx, "u1", created.ID, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrInvalidState)

	resolved, err := env.checkins.Resolve(ctx, "u1", created.ID, "mgr", "Manager")
	require.NoError(t, err)
	assert.Equal(t, model.StateResolved, resolved.State)
	assert.Equal(t, "mgr", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = env.checkins.Resolve(ctx, "u1", created.ID, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrInvalidState)

	// The full flow leaves three audit entries.
	logs, err := env.audit.GetForEntity(ctx, model.EntityCheckInRecord, created.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestAcknowledgeRequiresNeedsAssistance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u1",
		Status: model.StatusOK,
	}, "u1")
	require.NoError(t, err)

	_, err = env.checkins.Acknowledge(ctx, "u1", created.ID, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveRequiresAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u1",
		Status: model.StatusNeedsAssistance,
	}, "u1")
	require.NoError(t, err)

	_, err = env.checkins.Resolve(ctx, "u1", created.ID, "mgr", "Manager")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAcknowledgeMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkins.Acknowledge(context.Background(), "u1", "nope", "mgr", "Manager")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNeedingAssistance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	needy, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u1",
		Status: model.StatusNeedsAssistance,
	}, "u1")
	require.NoError(t, err)
	_, err = env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u2",
		Status: model.StatusOK,
	}, "u2")
	require.NoError(t, err)

	records, err := env.checkins.ListNeedingAssistance(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, needy.ID, records[0].ID)

	// Resolving removes the record from the list.
	_, err = env.checkins.Acknowledge(ctx, "u1", needy.ID, "mgr", "Manager")
	require.NoError(t, err)
	_, err = env.checkins.Resolve(ctx, "u1", needy.ID, "mgr", "Manager")
	require.NoError(t, err)

	records, err = env.checkins.ListNeedingAssistance(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListByCampaign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.checkins.Create(ctx, &model.CheckInRecord{
		UserID:              "u1",
		HeadcountCampaignID: "c1",
	}, "u1")
	require.NoError(t, err)
	_, err = env.checkins.Create(ctx, &model.CheckInRecord{
		UserID: "u2",
	}, "u2")
	require.NoError(t, err)

	records, err := env.checkins.ListByCampaign(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].UserID)
}

func TestVerifyStorage(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.checkins.VerifyStorage(context.Background()))
}
