package core

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/checkinblaze/checkinblaze/store"
)

type testEnv struct {
	checkins  *CheckInService
	headcount *HeadcountService
	prefs     *PreferenceService
	audit     *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	client, err := store.OpenSQLite(filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	require.NoError(t, client.EnsureTables(Tables()...))

	log := logrus.New()
	log.SetOutput(io.Discard)

	audit := NewAuditService(client.Table(TableAuditLogs), log)
	return &testEnv{
		checkins:  NewCheckInService(client.Table(TableCheckInRecords), audit, log),
		headcount: NewHeadcountService(client.Table(TableHeadcountCampaigns), audit, log),
		prefs:     NewPreferenceService(client.Table(TableUserPreferences), audit, log),
		audit:     audit,
	}
}
