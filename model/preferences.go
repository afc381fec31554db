package model

import "time"

// UserPreferences stores per-user application settings. Exactly zero or one
// record exists per user; a read that finds none persists these defaults.
type UserPreferences struct {
	UserID                   string            `json:"userId"`
	DefaultLocationPrecision LocationPrecision `json:"defaultLocationPrecision"`
	EnableLocationServices   bool              `json:"enableLocationServices"`
	EnableTeamsNotifications bool              `json:"enableTeamsNotifications"`
	LastModified             time.Time         `json:"lastModified"`
	LastModifiedBy           string            `json:"lastModifiedBy"`
}

// DefaultPreferences returns the record synthesized for a user that has
// never saved preferences.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:                   userID,
		DefaultLocationPrecision: PrecisionCityWide,
		EnableLocationServices:   true,
		EnableTeamsNotifications: true,
	}
}
