package model

import "time"

// AuditActionType classifies an audited action. Stored as its string name so
// new values can be introduced without a schema change.
type AuditActionType string

const (
	ActionCreate              AuditActionType = "Create"
	ActionUpdate              AuditActionType = "Update"
	ActionDelete              AuditActionType = "Delete"
	ActionLogin               AuditActionType = "Login"
	ActionLogout              AuditActionType = "Logout"
	ActionCheckIn             AuditActionType = "CheckIn"
	ActionHeadcountInitiated  AuditActionType = "HeadcountInitiated"
	ActionCheckInAcknowledged AuditActionType = "CheckInAcknowledged"
	ActionCheckInResolved     AuditActionType = "CheckInResolved"
)

// Entity type names used as audit partitions.
const (
	EntityCheckInRecord     = "CheckInRecord"
	EntityHeadcountCampaign = "HeadcountCampaign"
	EntityUserPreferences   = "UserPreferences"
)

// AuditLog is one immutable entry in the audit trail. PreviousState and
// NewState hold opaque JSON snapshots of the entity before and after the
// change.
type AuditLog struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	UserDisplayName   string          `json:"userDisplayName"`
	Timestamp         time.Time       `json:"timestamp"`
	EntityType        string          `json:"entityType"`
	EntityID          string          `json:"entityId"`
	ActionType        AuditActionType `json:"actionType"`
	ChangeDescription string          `json:"changeDescription"`
	PreviousState     string          `json:"previousState,omitempty"`
	NewState          string          `json:"newState,omitempty"`
	IPAddress         string          `json:"ipAddress,omitempty"`
	UserAgent         string          `json:"userAgent,omitempty"`
}
