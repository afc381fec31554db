package core

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/store"
)

// preferencesPartition is the fixed partition key: the table holds one row
// per user, keyed by user ID.
const preferencesPartition = "UserPreferences"

// PreferenceService owns per-user settings.
type PreferenceService struct {
	table store.Table
	audit *AuditService
	log   *logrus.Logger
}

func NewPreferenceService(table store.Table, audit *AuditService, log *logrus.Logger) *PreferenceService {
	return &PreferenceService{table: table, audit: audit, log: log}
}

// GetOrCreate returns the user's preferences. When none exist, defaults are
// synthesized AND persisted, so this read has an observable write side
// effect on first contact.
func (s *PreferenceService) GetOrCreate(ctx context.Context, userID string) (*model.UserPreferences, error) {
	e, err := s.table.Get(ctx, preferencesPartition, userID)
	if err == nil {
		return decodePreferences(e), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	defaults := model.DefaultPreferences(userID)
	defaults.LastModified = time.Now().UTC()
	defaults.LastModifiedBy = userID

	if _, err := s.Save(ctx, &defaults, userID); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// Save upserts the preferences with last-writer-wins semantics, stamping the
// modification metadata. The audit entry is a Create when no prior record
// existed, otherwise an Update with both snapshots.
func (s *PreferenceService) Save(ctx context.Context, prefs *model.UserPreferences, requestorID string) (*model.UserPreferences, error) {
	if prefs.UserID == "" {
		return nil, validationf("user ID is required")
	}

	previousState := ""
	actionType := model.ActionCreate
	if existing, err := s.table.Get(ctx, preferencesPartition, prefs.UserID); err == nil {
		prev, _ := json.Marshal(decodePreferences(existing))
		previousState = string(prev)
		actionType = model.ActionUpdate
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	prefs.LastModified = time.Now().UTC()
	prefs.LastModifiedBy = requestorID

	if err := s.table.Upsert(ctx, encodePreferences(prefs)); err != nil {
		return nil, err
	}

	actorName := "Administrator"
	if requestorID == prefs.UserID {
		actorName = "Self"
	}

	newState, _ := json.Marshal(prefs)
	err := s.audit.LogAction(ctx, model.AuditLog{
		UserID:          requestorID,
		UserDisplayName: actorName,
		ActionType:      actionType,
		EntityType:      model.EntityUserPreferences,
		EntityID:        prefs.UserID,
		PreviousState:   previousState,
		NewState:        string(newState),
	})
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func encodePreferences(p *model.UserPreferences) *store.Entity {
	e := &store.Entity{PartitionKey: preferencesPartition, RowKey: p.UserID}
	e.Set("DefaultLocationPrecision", string(p.DefaultLocationPrecision))
	e.Set("EnableLocationServices", strconv.FormatBool(p.EnableLocationServices))
	e.Set("EnableTeamsNotifications", strconv.FormatBool(p.EnableTeamsNotifications))
	e.Set("LastModified", encodeTime(p.LastModified))
	e.Set("LastModifiedBy", p.LastModifiedBy)
	return e
}

func decodePreferences(e *store.Entity) *model.UserPreferences {
	return &model.UserPreferences{
		UserID:                   e.RowKey,
		DefaultLocationPrecision: model.ParseLocationPrecision(e.Get("DefaultLocationPrecision")),
		EnableLocationServices:   decodeBool(e.Get("EnableLocationServices"), true),
		EnableTeamsNotifications: decodeBool(e.Get("EnableTeamsNotifications"), true),
		LastModified:             decodeTime(e.Get("LastModified")),
		LastModifiedBy:           e.Get("LastModifiedBy"),
	}
}

func decodeBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
