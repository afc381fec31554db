package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkinblaze/checkinblaze/model"
)

func TestPreferencesGetOrCreatePersistsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.prefs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.PrecisionCityWide, first.DefaultLocationPrecision)
	assert.True(t, first.EnableLocationServices)
	assert.True(t, first.EnableTeamsNotifications)
	assert.False(t, first.LastModified.IsZero())

	// Second read returns the same persisted record, not fresh defaults.
	second, err := env.prefs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.LastModified, second.LastModified)

	// The first read wrote exactly one audit Create entry.
	logs, err := env.audit.GetForEntity(ctx, model.EntityUserPreferences, "u1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionCreate, logs[0].ActionType)
	assert.Equal(t, "Self", logs[0].UserDisplayName)
}

func TestPreferencesSaveRequiresUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.prefs.Save(context.Background(), &model.UserPreferences{}, "u1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPreferencesSaveUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	prefs, err := env.prefs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	prefs.DefaultLocationPrecision = model.PrecisionPrecise
	prefs.EnableTeamsNotifications = false
	saved, err := env.prefs.Save(ctx, prefs, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.LastModifiedBy)

	got, err := env.prefs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.PrecisionPrecise, got.DefaultLocationPrecision)
	assert.False(t, got.EnableTeamsNotifications)
	assert.True(t, got.EnableLocationServices)

	logs, err := env.audit.GetForEntity(ctx, model.EntityUserPreferences, "u1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first: the update follows the implicit create.
	assert.Equal(t, model.ActionUpdate, logs[0].ActionType)
	assert.NotEmpty(t, logs[0].PreviousState)
}

func TestPreferencesSaveByAdministrator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	prefs := model.DefaultPreferences("u1")
	_, err := env.prefs.Save(ctx, &prefs, "admin")
	require.NoError(t, err)

	logs, err := env.audit.GetForEntity(ctx, model.EntityUserPreferences, "u1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].UserID)
	assert.Equal(t, "Administrator", logs[0].UserDisplayName)
}
