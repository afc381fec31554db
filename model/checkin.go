package model

import "time"

// LocationPrecision controls how accurately a check-in's coordinates are recorded.
type LocationPrecision string

const (
	PrecisionCityWide LocationPrecision = "CityWide"
	PrecisionPrecise  LocationPrecision = "Precise"
)

// ParseLocationPrecision maps a stored string back to a precision level.
// Unknown values fall back to CityWide rather than failing the read.
func ParseLocationPrecision(s string) LocationPrecision {
	switch s {
	case string(PrecisionPrecise):
		return PrecisionPrecise
	default:
		return PrecisionCityWide
	}
}

// SafetyStatus is the employee's self-reported condition.
type SafetyStatus string

const (
	StatusOK              SafetyStatus = "OK"
	StatusNeedsAssistance SafetyStatus = "NeedsAssistance"
)

func ParseSafetyStatus(s string) SafetyStatus {
	switch s {
	case string(StatusNeedsAssistance):
		return StatusNeedsAssistance
	default:
		return StatusOK
	}
}

// CheckInState is the workflow state of a check-in.
// Transitions only move forward: Submitted -> Acknowledged -> Resolved.
type CheckInState string

const (
	StateSubmitted    CheckInState = "Submitted"
	StateAcknowledged CheckInState = "Acknowledged"
	StateResolved     CheckInState = "Resolved"
)

func ParseCheckInState(s string) CheckInState {
	switch s {
	case string(StateAcknowledged):
		return StateAcknowledged
	case string(StateResolved):
		return StateResolved
	default:
		return StateSubmitted
	}
}

// CheckInRecord is one safety check-in submitted by an employee.
type CheckInRecord struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"userId"`
	UserDisplayName     string            `json:"userDisplayName"`
	UserEmail           string            `json:"userEmail"`
	UserJobTitle        string            `json:"userJobTitle,omitempty"`
	UserDepartment      string            `json:"userDepartment,omitempty"`
	UserOfficeLocation  string            `json:"userOfficeLocation,omitempty"`
	Timestamp           time.Time         `json:"timestamp"`
	Latitude            *float64          `json:"latitude,omitempty"`
	Longitude           *float64          `json:"longitude,omitempty"`
	LocationPrecision   LocationPrecision `json:"locationPrecision"`
	Status              SafetyStatus      `json:"status"`
	Notes               string            `json:"notes,omitempty"`
	State               CheckInState      `json:"state"`
	HeadcountCampaignID string            `json:"headcountCampaignId,omitempty"`
	AcknowledgedBy      string            `json:"acknowledgedByUserId,omitempty"`
	AcknowledgedAt      *time.Time        `json:"acknowledgedTimestamp,omitempty"`
	ResolvedBy          string            `json:"resolvedByUserId,omitempty"`
	ResolvedAt          *time.Time        `json:"resolvedTimestamp,omitempty"`
}
