package model

import "time"

// CampaignStatus is the lifecycle status of a headcount campaign.
// Completed, Expired and Cancelled are terminal.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "Active"
	CampaignPaused    CampaignStatus = "Paused"
	CampaignCompleted CampaignStatus = "Completed"
	CampaignExpired   CampaignStatus = "Expired"
	CampaignCancelled CampaignStatus = "Cancelled"
)

func ParseCampaignStatus(s string) CampaignStatus {
	switch s {
	case string(CampaignPaused):
		return CampaignPaused
	case string(CampaignCompleted):
		return CampaignCompleted
	case string(CampaignExpired):
		return CampaignExpired
	case string(CampaignCancelled):
		return CampaignCancelled
	default:
		return CampaignActive
	}
}

// Terminal reports whether no further status changes are expected.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignExpired || s == CampaignCancelled
}

// HeadcountCampaign is a manager-initiated request for a set of users to
// report their safety status.
//
// Invariant: once a user has responded they appear in exactly one of
// NeedAssistanceUserIDs / SafeUserIDs, and always in RespondedUserIDs.
type HeadcountCampaign struct {
	ID                     string         `json:"id"`
	Title                  string         `json:"title"`
	Description            string         `json:"description,omitempty"`
	InitiatedByUserID      string         `json:"initiatedByUserId"`
	InitiatedByDisplayName string         `json:"initiatedByDisplayName"`
	InitiatedByUPN         string         `json:"initiatedByUPN,omitempty"`
	CreatedTimestamp       time.Time      `json:"createdTimestamp"`
	ExpiresTimestamp       *time.Time     `json:"expiresTimestamp,omitempty"`
	Status                 CampaignStatus `json:"status"`
	TargetedUserIDs        UserIDSet      `json:"targetedUserIds"`
	RespondedUserIDs       UserIDSet      `json:"respondedUserIds"`
	NeedAssistanceUserIDs  UserIDSet      `json:"needAssistanceUserIds"`
	SafeUserIDs            UserIDSet      `json:"safeUserIds"`
	Notes                  string         `json:"notes,omitempty"`
}

// RecordResponse folds one user response into the membership sets. Calling it
// again with a different flag migrates the user between the two status sets.
func (c *HeadcountCampaign) RecordResponse(userID string, needsAssistance bool) {
	c.RespondedUserIDs.Add(userID)
	if needsAssistance {
		c.NeedAssistanceUserIDs.Add(userID)
		c.SafeUserIDs.Remove(userID)
	} else {
		c.SafeUserIDs.Add(userID)
		c.NeedAssistanceUserIDs.Remove(userID)
	}
}
