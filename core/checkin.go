package core

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/store"
)

// historyLookback is how far back GetHistory scans.
const historyLookback = 30 * 24 * time.Hour

// CheckInService owns the check-in lifecycle. Records are partitioned by the
// submitting user's ID, so one user's check-ins are co-located.
type CheckInService struct {
	table store.Table
	audit *AuditService
	log   *logrus.Logger
}

func NewCheckInService(table store.Table, audit *AuditService, log *logrus.Logger) *CheckInService {
	return &CheckInService{table: table, audit: audit, log: log}
}

// Create persists a new check-in. The record's ID and timestamp are assigned
// when absent. requestorID is the authenticated caller, which may differ from
// the record's user when submitted on someone's behalf.
func (s *CheckInService) Create(ctx context.Context, checkIn *model.CheckInRecord, requestorID string) (*model.CheckInRecord, error) {
	if checkIn.UserID == "" {
		return nil, validationf("user ID is required")
	}
	if checkIn.ID == "" {
		checkIn.ID = uuid.NewString()
	}
	if checkIn.Timestamp.IsZero() {
		checkIn.Timestamp = time.Now().UTC()
	}
	if checkIn.Status == "" {
		checkIn.Status = model.StatusOK
	}
	if checkIn.State == "" {
		checkIn.State = model.StateSubmitted
	}
	if checkIn.LocationPrecision == "" {
		checkIn.LocationPrecision = model.PrecisionCityWide
	}

	if err := s.table.Insert(ctx, encodeCheckIn(checkIn)); err != nil {
		return nil, err
	}

	newState, _ := json.Marshal(checkIn)
	err := s.audit.LogAction(ctx, model.AuditLog{
		UserID:          requestorID,
		UserDisplayName: checkIn.UserDisplayName,
		ActionType:      model.ActionCheckIn,
		EntityType:      model.EntityCheckInRecord,
		EntityID:        checkIn.ID,
		NewState:        string(newState),
	})
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

// Get returns the check-in or nil when no such record exists. Absence is not
// an error.
func (s *CheckInService) Get(ctx context.Context, userID, checkInID string) (*model.CheckInRecord, error) {
	e, err := s.table.Get(ctx, userID, checkInID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.LogError(s.log, "checkin", "Get", userID+"/"+checkInID, err)
		return nil, nil
	}
	return decodeCheckIn(e), nil
}

// GetLatest returns the user's most recent check-in by timestamp, or nil.
// Ties are broken arbitrarily.
func (s *CheckInService) GetLatest(ctx context.Context, userID string) (*model.CheckInRecord, error) {
	entities, err := s.table.Query(ctx, store.Query{PartitionKey: userID})
	if err != nil {
		logging.LogError(s.log, "checkin", "GetLatest", userID, err)
		return nil, nil
	}

	var latest *model.CheckInRecord
	for _, e := range entities {
		rec := decodeCheckIn(e)
		if latest == nil || rec.Timestamp.After(latest.Timestamp) {
			latest = rec
		}
	}
	return latest, nil
}

// GetHistory returns up to maxResults of the user's check-ins from the last
// 30 days, newest first. maxResults defaults to 50.
func (s *CheckInService) GetHistory(ctx context.Context, userID string, maxResults int) ([]model.CheckInRecord, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	cutoff := time.Now().UTC().Add(-historyLookback)

	entities, err := s.table.Query(ctx, store.Query{
		PartitionKey: userID,
		Filter: func(e *store.Entity) bool {
			return !decodeTime(e.Get("CheckInTimestamp")).Before(cutoff)
		},
	})
	if err != nil {
		logging.LogError(s.log, "checkin", "GetHistory", userID, err)
		return nil, nil
	}

	records := sortedCheckIns(entities)
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	return records, nil
}

// Update rewrites a check-in's mutable fields: notes, status, workflow state
// and the acknowledge/resolve attribution. Identity and location fields are
// immutable after creation and are ignored on the input. The write is guarded
// by the concurrency token captured at read time and retried on conflict.
func (s *CheckInService) Update(ctx context.Context, checkIn *model.CheckInRecord, requestorID string) (*model.CheckInRecord, error) {
	if checkIn.ID == "" || checkIn.UserID == "" {
		return nil, validationf("check-in ID and user ID are required")
	}

	var updated *model.CheckInRecord
	err := store.RetryConflict(ctx, func() error {
		existing, err := s.table.Get(ctx, checkIn.UserID, checkIn.ID)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("check-in %s", checkIn.ID)
		}
		if err != nil {
			return err
		}

		previous := decodeCheckIn(existing)

		merged := *previous
		merged.Notes = checkIn.Notes
		merged.Status = checkIn.Status
		merged.State = checkIn.State
		merged.AcknowledgedBy = checkIn.AcknowledgedBy
		merged.AcknowledgedAt = checkIn.AcknowledgedAt
		merged.ResolvedBy = checkIn.ResolvedBy
		merged.ResolvedAt = checkIn.ResolvedAt

		e := encodeCheckIn(&merged)
		if err := s.table.Update(ctx, e, existing.ETag); err != nil {
			return err
		}

		prevState, _ := json.Marshal(previous)
		newState, _ := json.Marshal(&merged)
		if err := s.audit.LogAction(ctx, model.AuditLog{
			UserID:          requestorID,
			UserDisplayName: "System",
			ActionType:      model.ActionUpdate,
			EntityType:      model.EntityCheckInRecord,
			EntityID:        checkIn.ID,
			PreviousState:   string(prevState),
			NewState:        string(newState),
		}); err != nil {
			return err
		}

		updated = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Acknowledge moves a needs-assistance check-in from Submitted to
// Acknowledged, recording who acknowledged it.
func (s *CheckInService) Acknowledge(ctx context.Context, userID, checkInID, byUserID, byDisplayName string) (*model.CheckInRecord, error) {
	checkIn, err := s.Get(ctx, userID, checkInID)
	if err != nil {
		return nil, err
	}
	if checkIn == nil {
		return nil, notFoundf("check-in %s", checkInID)
	}
	if checkIn.Status != model.StatusNeedsAssistance {
		return nil, invalidStatef("can only acknowledge check-ins that need assistance")
	}
	if checkIn.State != model.StateSubmitted {
		return nil, invalidStatef("check-in has already been acknowledged or resolved")
	}

	now := time.Now().UTC()
	checkIn.State = model.StateAcknowledged
	checkIn.AcknowledgedBy = byUserID
	checkIn.AcknowledgedAt = &now

	return s.Update(ctx, checkIn, byUserID)
}

// Resolve closes an acknowledged check-in, recording who resolved it.
func (s *CheckInService) Resolve(ctx context.Context, userID, checkInID, byUserID, byDisplayName string) (*model.CheckInRecord, error) {
	checkIn, err := s.Get(ctx, userID, checkInID)
	if err != nil {
		return nil, err
	}
	if checkIn == nil {
		return nil, notFoundf("check-in %s", checkInID)
	}
	if checkIn.State != model.StateAcknowledged {
		return nil, invalidStatef("can only resolve check-ins that have been acknowledged")
	}

	now := time.Now().UTC()
	checkIn.State = model.StateResolved
	checkIn.ResolvedBy = byUserID
	checkIn.ResolvedAt = &now

	return s.Update(ctx, checkIn, byUserID)
}

// ListNeedingAssistance returns every unresolved needs-assistance check-in,
// newest first. This is a cross-partition scan, acceptable only at the scale
// this system runs at.
func (s *CheckInService) ListNeedingAssistance(ctx context.Context) ([]model.CheckInRecord, error) {
	entities, err := s.table.Query(ctx, store.Query{
		Filter: func(e *store.Entity) bool {
			return e.Get("Status") == string(model.StatusNeedsAssistance) &&
				e.Get("State") != string(model.StateResolved)
		},
	})
	if err != nil {
		logging.LogError(s.log, "checkin", "ListNeedingAssistance", "", err)
		return nil, nil
	}
	return sortedCheckIns(entities), nil
}

// ListByCampaign returns the check-ins submitted against one headcount
// campaign, newest first. Cross-partition scan, same caveat as above.
func (s *CheckInService) ListByCampaign(ctx context.Context, campaignID string) ([]model.CheckInRecord, error) {
	entities, err := s.table.Query(ctx, store.Query{
		Filter: func(e *store.Entity) bool {
			return e.Get("HeadcountCampaignId") == campaignID
		},
	})
	if err != nil {
		logging.LogError(s.log, "checkin", "ListByCampaign", campaignID, err)
		return nil, nil
	}
	return sortedCheckIns(entities), nil
}

// VerifyStorage round-trips a throwaway record to prove connectivity.
func (s *CheckInService) VerifyStorage(ctx context.Context) error {
	testID := "test-" + uuid.NewString()
	e := &store.Entity{PartitionKey: "test", RowKey: testID}
	e.Set("Status", string(model.StatusOK))
	e.Set("State", string(model.StateSubmitted))
	e.Set("CheckInTimestamp", encodeTime(time.Now().UTC()))

	if err := s.table.Insert(ctx, e); err != nil {
		return err
	}
	return s.table.Delete(ctx, "test", testID)
}

func sortedCheckIns(entities []*store.Entity) []model.CheckInRecord {
	records := make([]model.CheckInRecord, 0, len(entities))
	for _, e := range entities {
		records = append(records, *decodeCheckIn(e))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records
}

func encodeCheckIn(c *model.CheckInRecord) *store.Entity {
	e := &store.Entity{PartitionKey: c.UserID, RowKey: c.ID}
	e.Set("UserDisplayName", c.UserDisplayName)
	e.Set("UserEmail", c.UserEmail)
	e.Set("UserJobTitle", c.UserJobTitle)
	e.Set("UserDepartment", c.UserDepartment)
	e.Set("UserOfficeLocation", c.UserOfficeLocation)
	e.Set("CheckInTimestamp", encodeTime(c.Timestamp))
	e.Set("Latitude", encodeFloat(c.Latitude))
	e.Set("Longitude", encodeFloat(c.Longitude))
	e.Set("LocationPrecision", string(c.LocationPrecision))
	e.Set("Status", string(c.Status))
	e.Set("Notes", c.Notes)
	e.Set("State", string(c.State))
	e.Set("HeadcountCampaignId", c.HeadcountCampaignID)
	e.Set("AcknowledgedByUserId", c.AcknowledgedBy)
	e.Set("AcknowledgedTimestamp", encodeTimePtr(c.AcknowledgedAt))
	e.Set("ResolvedByUserId", c.ResolvedBy)
	e.Set("ResolvedTimestamp", encodeTimePtr(c.ResolvedAt))
	return e
}

func decodeCheckIn(e *store.Entity) *model.CheckInRecord {
	return &model.CheckInRecord{
		ID:                  e.RowKey,
		UserID:              e.PartitionKey,
		UserDisplayName:     e.Get("UserDisplayName"),
		UserEmail:           e.Get("UserEmail"),
		UserJobTitle:        e.Get("UserJobTitle"),
		UserDepartment:      e.Get("UserDepartment"),
		UserOfficeLocation:  e.Get("UserOfficeLocation"),
		Timestamp:           decodeTime(e.Get("CheckInTimestamp")),
		Latitude:            decodeFloat(e.Get("Latitude")),
		Longitude:           decodeFloat(e.Get("Longitude")),
		LocationPrecision:   model.ParseLocationPrecision(e.Get("LocationPrecision")),
		Status:              model.ParseSafetyStatus(e.Get("Status")),
		Notes:               e.Get("Notes"),
		State:               model.ParseCheckInState(e.Get("State")),
		HeadcountCampaignID: e.Get("HeadcountCampaignId"),
		AcknowledgedBy:      e.Get("AcknowledgedByUserId"),
		AcknowledgedAt:      decodeTimePtr(e.Get("AcknowledgedTimestamp")),
		ResolvedBy:          e.Get("ResolvedByUserId"),
		ResolvedAt:          decodeTimePtr(e.Get("ResolvedTimestamp")),
	}
}

func encodeFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func decodeFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
