package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/store"
)

// recentLookback bounds how far back GetRecent scans.
const recentLookback = 2 * 30 * 24 * time.Hour

// AuditService appends immutable entries to the audit trail. Entries are
// partitioned by entity type so per-entity queries stay within one partition.
//
// Writes are synchronous: a failed audit append fails the caller's mutation.
type AuditService struct {
	table store.Table
	log   *logrus.Logger
}

func NewAuditService(table store.Table, log *logrus.Logger) *AuditService {
	return &AuditService{table: table, log: log}
}

// LogAction records one action. ID, Timestamp and ChangeDescription are
// assigned here; everything else comes from the caller.
func (s *AuditService) LogAction(ctx context.Context, entry model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.ChangeDescription = changeDescription(entry.ActionType, entry.EntityType)

	e := &store.Entity{
		PartitionKey: entry.EntityType,
		RowKey:       entry.ID,
	}
	e.Set("UserId", entry.UserID)
	e.Set("UserDisplayName", entry.UserDisplayName)
	e.Set("Timestamp", encodeTime(entry.Timestamp))
	e.Set("ActionType", string(entry.ActionType))
	e.Set("EntityType", entry.EntityType)
	e.Set("EntityId", entry.EntityID)
	e.Set("ChangeDescription", entry.ChangeDescription)
	e.Set("PreviousState", entry.PreviousState)
	e.Set("NewState", entry.NewState)
	e.Set("IpAddress", entry.IPAddress)
	e.Set("UserAgent", entry.UserAgent)

	if err := s.table.Insert(ctx, e); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// GetForEntity returns the audit trail of one entity, most recent first.
// A storage failure degrades to an empty result.
func (s *AuditService) GetForEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	entities, err := s.table.Query(ctx, store.Query{
		PartitionKey: entityType,
		Filter: func(e *store.Entity) bool {
			return e.Get("EntityId") == entityID
		},
	})
	if err != nil {
		logging.LogError(s.log, "audit", "GetForEntity", entityType+"/"+entityID, err)
		return nil, nil
	}
	return sortedLogs(entities), nil
}

// GetRecent returns up to maxResults entries from roughly the last two
// months, most recent first. A storage failure degrades to an empty result.
func (s *AuditService) GetRecent(ctx context.Context, maxResults int) ([]model.AuditLog, error) {
	if maxResults <= 0 {
		maxResults = 100
	}
	cutoff := time.Now().UTC().Add(-recentLookback)

	entities, err := s.table.Query(ctx, store.Query{
		Filter: func(e *store.Entity) bool {
			return !decodeTime(e.Get("Timestamp")).Before(cutoff)
		},
	})
	if err != nil {
		logging.LogError(s.log, "audit", "GetRecent", "", err)
		return nil, nil
	}

	logs := sortedLogs(entities)
	if len(logs) > maxResults {
		logs = logs[:maxResults]
	}
	return logs, nil
}

func sortedLogs(entities []*store.Entity) []model.AuditLog {
	logs := make([]model.AuditLog, 0, len(entities))
	for _, e := range entities {
		logs = append(logs, decodeAuditLog(e))
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs
}

func decodeAuditLog(e *store.Entity) model.AuditLog {
	return model.AuditLog{
		ID:                e.RowKey,
		UserID:            e.Get("UserId"),
		UserDisplayName:   e.Get("UserDisplayName"),
		Timestamp:         decodeTime(e.Get("Timestamp")),
		EntityType:        e.Get("EntityType"),
		EntityID:          e.Get("EntityId"),
		ActionType:        model.AuditActionType(e.Get("ActionType")),
		ChangeDescription: e.Get("ChangeDescription"),
		PreviousState:     e.Get("PreviousState"),
		NewState:          e.Get("NewState"),
		IPAddress:         e.Get("IpAddress"),
		UserAgent:         e.Get("UserAgent"),
	}
}

// changeDescription derives the human-readable summary from the action and
// entity type. The wording is fixed; clients and reports key off it.
func changeDescription(actionType model.AuditActionType, entityType string) string {
	switch actionType {
	case model.ActionCreate:
		return fmt.Sprintf("Created new %s", entityType)
	case model.ActionUpdate:
		return fmt.Sprintf("Updated %s", entityType)
	case model.ActionDelete:
		return fmt.Sprintf("Deleted %s", entityType)
	case model.ActionLogin:
		return "User logged in"
	case model.ActionLogout:
		return "User logged out"
	case model.ActionCheckIn:
		return "User submitted a check-in"
	case model.ActionHeadcountInitiated:
		return "Headcount campaign initiated"
	case model.ActionCheckInAcknowledged:
		return "Check-in acknowledged"
	case model.ActionCheckInResolved:
		return "Check-in resolved"
	default:
		return fmt.Sprintf("%s action on %s", actionType, entityType)
	}
}
