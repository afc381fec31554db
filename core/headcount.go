package core

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/store"
)

// HeadcountService owns headcount campaigns. Campaigns are partitioned by
// the initiating manager's user ID.
type HeadcountService struct {
	table store.Table
	audit *AuditService
	log   *logrus.Logger
}

func NewHeadcountService(table store.Table, audit *AuditService, log *logrus.Logger) *HeadcountService {
	return &HeadcountService{table: table, audit: audit, log: log}
}

// Create persists a new campaign. The initiator fields, creation timestamp
// and Active status are assigned here; the three response sets start empty.
func (s *HeadcountService) Create(ctx context.Context, campaign *model.HeadcountCampaign, requestorID, requestorDisplayName string) (*model.HeadcountCampaign, error) {
	if campaign.Title == "" {
		return nil, validationf("campaign title is required")
	}
	if len(campaign.TargetedUserIDs) == 0 {
		return nil, validationf("at least one targeted user ID is required")
	}
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}

	campaign.InitiatedByUserID = requestorID
	campaign.InitiatedByDisplayName = requestorDisplayName
	campaign.CreatedTimestamp = time.Now().UTC()
	campaign.Status = model.CampaignActive
	campaign.RespondedUserIDs = model.UserIDSet{}
	campaign.NeedAssistanceUserIDs = model.UserIDSet{}
	campaign.SafeUserIDs = model.UserIDSet{}

	if err := s.table.Insert(ctx, encodeCampaign(campaign)); err != nil {
		return nil, err
	}

	newState, _ := json.Marshal(campaign)
	err := s.audit.LogAction(ctx, model.AuditLog{
		UserID:          requestorID,
		UserDisplayName: requestorDisplayName,
		ActionType:      model.ActionHeadcountInitiated,
		EntityType:      model.EntityHeadcountCampaign,
		EntityID:        campaign.ID,
		NewState:        string(newState),
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// Get returns the campaign or nil when no such record exists.
func (s *HeadcountService) Get(ctx context.Context, initiatorID, campaignID string) (*model.HeadcountCampaign, error) {
	e, err := s.table.Get(ctx, initiatorID, campaignID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.LogError(s.log, "headcount", "Get", initiatorID+"/"+campaignID, err)
		return nil, nil
	}
	return decodeCampaign(e), nil
}

// ListActive returns the initiator's active campaigns, newest first.
func (s *HeadcountService) ListActive(ctx context.Context, initiatorID string) ([]model.HeadcountCampaign, error) {
	entities, err := s.table.Query(ctx, store.Query{
		PartitionKey: initiatorID,
		Filter: func(e *store.Entity) bool {
			return e.Get("Status") == string(model.CampaignActive)
		},
	})
	if err != nil {
		logging.LogError(s.log, "headcount", "ListActive", initiatorID, err)
		return nil, nil
	}
	return sortedCampaigns(entities), nil
}

// ListAllForUser returns every campaign the user initiated plus every
// campaign that targets them. The targeted half requires a full-table scan
// that deserializes the target set per row; acceptable only at small scale.
func (s *HeadcountService) ListAllForUser(ctx context.Context, userID string) ([]model.HeadcountCampaign, error) {
	entities, err := s.table.Query(ctx, store.Query{
		Filter: func(e *store.Entity) bool {
			if e.PartitionKey == userID {
				return true
			}
			var targeted model.UserIDSet
			if err := json.Unmarshal([]byte(orEmptyArray(e.Get("TargetedUserIds"))), &targeted); err != nil {
				return false
			}
			return targeted.Contains(userID)
		},
	})
	if err != nil {
		logging.LogError(s.log, "headcount", "ListAllForUser", userID, err)
		return nil, nil
	}
	return sortedCampaigns(entities), nil
}

// UpdateStatus moves a campaign to a new status. Completed and Expired also
// stamp the expiry timestamp. The write is token-guarded and retried on
// conflict.
func (s *HeadcountService) UpdateStatus(ctx context.Context, initiatorID, campaignID string, status model.CampaignStatus, requestorID, requestorDisplayName string) (*model.HeadcountCampaign, error) {
	var updated *model.HeadcountCampaign
	err := store.RetryConflict(ctx, func() error {
		e, err := s.table.Get(ctx, initiatorID, campaignID)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("campaign %s", campaignID)
		}
		if err != nil {
			return err
		}

		previous := decodeCampaign(e)

		next := *previous
		next.Status = status
		if status == model.CampaignCompleted || status == model.CampaignExpired {
			now := time.Now().UTC()
			next.ExpiresTimestamp = &now
		}

		if err := s.table.Update(ctx, encodeCampaign(&next), e.ETag); err != nil {
			return err
		}

		prevState, _ := json.Marshal(previous)
		newState, _ := json.Marshal(&next)
		if err := s.audit.LogAction(ctx, model.AuditLog{
			UserID:          requestorID,
			UserDisplayName: requestorDisplayName,
			ActionType:      model.ActionUpdate,
			EntityType:      model.EntityHeadcountCampaign,
			EntityID:        campaignID,
			PreviousState:   string(prevState),
			NewState:        string(newState),
		}); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RecordResponse folds one user's check-in into the campaign's membership
// sets. Re-invoking with a different flag migrates the user between the safe
// and needs-assistance sets; the final state depends only on the last call.
func (s *HeadcountService) RecordResponse(ctx context.Context, initiatorID, campaignID, userID string, needsAssistance bool) (*model.HeadcountCampaign, error) {
	var updated *model.HeadcountCampaign
	err := store.RetryConflict(ctx, func() error {
		e, err := s.table.Get(ctx, initiatorID, campaignID)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("campaign %s", campaignID)
		}
		if err != nil {
			return err
		}

		previous := decodeCampaign(e)

		next := *previous
		next.RespondedUserIDs = append(model.UserIDSet{}, previous.RespondedUserIDs...)
		next.NeedAssistanceUserIDs = append(model.UserIDSet{}, previous.NeedAssistanceUserIDs...)
		next.SafeUserIDs = append(model.UserIDSet{}, previous.SafeUserIDs...)
		next.RecordResponse(userID, needsAssistance)

		if err := s.table.Update(ctx, encodeCampaign(&next), e.ETag); err != nil {
			return err
		}

		prevState, _ := json.Marshal(previous)
		newState, _ := json.Marshal(&next)
		if err := s.audit.LogAction(ctx, model.AuditLog{
			UserID:          userID,
			UserDisplayName: userID,
			ActionType:      model.ActionCheckIn,
			EntityType:      model.EntityHeadcountCampaign,
			EntityID:        campaignID,
			PreviousState:   string(prevState),
			NewState:        string(newState),
		}); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func sortedCampaigns(entities []*store.Entity) []model.HeadcountCampaign {
	campaigns := make([]model.HeadcountCampaign, 0, len(entities))
	for _, e := range entities {
		campaigns = append(campaigns, *decodeCampaign(e))
	}
	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedTimestamp.After(campaigns[j].CreatedTimestamp)
	})
	return campaigns
}

func encodeCampaign(c *model.HeadcountCampaign) *store.Entity {
	e := &store.Entity{PartitionKey: c.InitiatedByUserID, RowKey: c.ID}
	e.Set("Title", c.Title)
	e.Set("Description", c.Description)
	e.Set("InitiatedByUserId", c.InitiatedByUserID)
	e.Set("InitiatedByDisplayName", c.InitiatedByDisplayName)
	e.Set("InitiatedByUPN", c.InitiatedByUPN)
	e.Set("CreatedTimestamp", encodeTime(c.CreatedTimestamp))
	e.Set("ExpiresTimestamp", encodeTimePtr(c.ExpiresTimestamp))
	e.Set("Status", string(c.Status))
	e.Set("TargetedUserIds", encodeUserIDs(c.TargetedUserIDs))
	e.Set("RespondedUserIds", encodeUserIDs(c.RespondedUserIDs))
	e.Set("NeedAssistanceUserIds", encodeUserIDs(c.NeedAssistanceUserIDs))
	e.Set("SafeUserIds", encodeUserIDs(c.SafeUserIDs))
	e.Set("Notes", c.Notes)
	return e
}

func decodeCampaign(e *store.Entity) *model.HeadcountCampaign {
	return &model.HeadcountCampaign{
		ID:                     e.RowKey,
		Title:                  e.Get("Title"),
		Description:            e.Get("Description"),
		InitiatedByUserID:      e.Get("InitiatedByUserId"),
		InitiatedByDisplayName: e.Get("InitiatedByDisplayName"),
		InitiatedByUPN:         e.Get("InitiatedByUPN"),
		CreatedTimestamp:       decodeTime(e.Get("CreatedTimestamp")),
		ExpiresTimestamp:       decodeTimePtr(e.Get("ExpiresTimestamp")),
		Status:                 model.ParseCampaignStatus(e.Get("Status")),
		TargetedUserIDs:        decodeUserIDs(e.Get("TargetedUserIds")),
		RespondedUserIDs:       decodeUserIDs(e.Get("RespondedUserIds")),
		NeedAssistanceUserIDs:  decodeUserIDs(e.Get("NeedAssistanceUserIds")),
		SafeUserIDs:            decodeUserIDs(e.Get("SafeUserIds")),
		Notes:                  e.Get("Notes"),
	}
}

func encodeUserIDs(s model.UserIDSet) string {
	if s == nil {
		s = model.UserIDSet{}
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func decodeUserIDs(raw string) model.UserIDSet {
	var s model.UserIDSet
	if err := json.Unmarshal([]byte(orEmptyArray(raw)), &s); err != nil {
		return model.UserIDSet{}
	}
	if s == nil {
		s = model.UserIDSet{}
	}
	return s
}

func orEmptyArray(raw string) string {
	if raw == "" {
		return "[]"
	}
	return raw
}
