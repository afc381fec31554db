package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkinblaze/checkinblaze/model"
)

func TestChangeDescription(t *testing.T) {
	tests := []struct {
		action   model.AuditActionType
		entity   string
		expected string
	}{
		{model.ActionCreate, "CheckInRecord", "Created new CheckInRecord"},
		{model.ActionUpdate, "UserPreferences", "Updated UserPreferences"},
		{model.ActionDelete, "CheckInRecord", "Deleted CheckInRecord"},
		{model.ActionLogin, "CheckInRecord", "User logged in"},
		{model.ActionLogout, "CheckInRecord", "User logged out"},
		{model.ActionCheckIn, "CheckInRecord", "User submitted a check-in"},
		{model.ActionHeadcountInitiated, "HeadcountCampaign", "Headcount campaign initiated"},
		{model.ActionCheckInAcknowledged, "CheckInRecord", "Check-in acknowledged"},
		{model.ActionCheckInResolved, "CheckInRecord", "Check-in resolved"},
		{model.AuditActionType("Custom"), "Widget", "Custom action on Widget"},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.expected, changeDescription(tt.action, tt.entity))
		})
	}
}

func TestLogActionAssignsFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.audit.LogAction(ctx, model.AuditLog{
		UserID:     "u1",
		ActionType: model.ActionCreate,
		EntityType: model.EntityCheckInRecord,
		EntityID:   "e1",
	})
	require.NoError(t, err)

	logs, err := env.audit.GetForEntity(ctx, model.EntityCheckInRecord, "e1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].Timestamp.IsZero())
	assert.Equal(t, "Created new CheckInRecord", logs[0].ChangeDescription)
	assert.Equal(t, "u1", logs[0].UserID)
}

func TestGetForEntityFiltersAndSorts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := env.audit.LogAction(ctx, model.AuditLog{
			UserID:     "u1",
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			ActionType: model.ActionUpdate,
			EntityType: model.EntityCheckInRecord,
			EntityID:   "target",
		})
		require.NoError(t, err)
	}
	// Different entity in the same partition, and a different partition.
	require.NoError(t, env.audit.LogAction(ctx, model.AuditLog{
		ActionType: model.ActionUpdate,
		EntityType: model.EntityCheckInRecord,
		EntityID:   "other",
	}))
	require.NoError(t, env.audit.LogAction(ctx, model.AuditLog{
		ActionType: model.ActionUpdate,
		EntityType: model.EntityHeadcountCampaign,
		EntityID:   "target",
	}))

	logs, err := env.audit.GetForEntity(ctx, model.EntityCheckInRecord, "target")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i-1].Timestamp.Before(logs[i].Timestamp), "logs must be newest first")
	}
}

func TestGetRecentCapsResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := env.audit.LogAction(ctx, model.AuditLog{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			ActionType: model.ActionCreate,
			EntityType: model.EntityCheckInRecord,
			EntityID:   fmt.Sprintf("e%d", i),
		})
		require.NoError(t, err)
	}

	logs, err := env.audit.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "e4", logs[0].EntityID)
	assert.Equal(t, "e3", logs[1].EntityID)
}

func TestGetRecentExcludesOldEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.audit.LogAction(ctx, model.AuditLog{
		Timestamp:  time.Now().UTC().Add(-recentLookback - time.Hour),
		ActionType: model.ActionCreate,
		EntityType: model.EntityCheckInRecord,
		EntityID:   "ancient",
	}))
	require.NoError(t, env.audit.LogAction(ctx, model.AuditLog{
		ActionType: model.ActionCreate,
		EntityType: model.EntityCheckInRecord,
		EntityID:   "fresh",
	}))

	logs, err := env.audit.GetRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "fresh", logs[0].EntityID)
}
