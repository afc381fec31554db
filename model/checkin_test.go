package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocationPrecision(t *testing.T) {
	tests := []struct {
		in       string
		expected LocationPrecision
	}{
		{"Precise", PrecisionPrecise},
		{"CityWide", PrecisionCityWide},
		{"", PrecisionCityWide},
		{"garbage", PrecisionCityWide},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLocationPrecision(tt.in), tt.in)
	}
}

func TestParseSafetyStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected SafetyStatus
	}{
		{"NeedsAssistance", StatusNeedsAssistance},
		{"OK", StatusOK},
		{"", StatusOK},
		{"garbage", StatusOK},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseSafetyStatus(tt.in), tt.in)
	}
}

func TestParseCheckInState(t *testing.T) {
	tests := []struct {
		in       string
		expected CheckInState
	}{
		{"Acknowledged", StateAcknowledged},
		{"Resolved", StateResolved},
		{"Submitted", StateSubmitted},
		{"", StateSubmitted},
		{"garbage", StateSubmitted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseCheckInState(tt.in), tt.in)
	}
}

func TestParseCampaignStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected CampaignStatus
	}{
		{"Paused", CampaignPaused},
		{"Completed", CampaignCompleted},
		{"Expired", CampaignExpired},
		{"Cancelled", CampaignCancelled},
		{"Active", CampaignActive},
		{"", CampaignActive},
		{"garbage", CampaignActive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseCampaignStatus(tt.in), tt.in)
	}
}

func TestCampaignStatusTerminal(t *testing.T) {
	assert.False(t, CampaignActive.Terminal())
	assert.False(t, CampaignPaused.Terminal())
	assert.True(t, CampaignCompleted.Terminal())
	assert.True(t, CampaignExpired.Terminal())
	assert.True(t, CampaignCancelled.Terminal())
}
