package core

import "time"

// Logical table names in the backing store.
const (
	TableCheckInRecords     = "checkinrecords"
	TableUserPreferences    = "userpreferences"
	TableAuditLogs          = "auditlogs"
	TableHeadcountCampaigns = "headcountcampaigns"
)

// Tables lists every logical table so callers can migrate them in one shot.
func Tables() []string {
	return []string{
		TableCheckInRecords,
		TableUserPreferences,
		TableAuditLogs,
		TableHeadcountCampaigns,
	}
}

// timeLayout is the wire format for timestamps stored as table properties.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return encodeTime(*t)
}

func decodeTimePtr(s string) *time.Time {
	t := decodeTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
