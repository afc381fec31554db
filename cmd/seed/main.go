// Seeds a local SQLite store with a small demo data set: a few check-ins,
// one headcount campaign with mixed responses, and the preferences the
// first read would create anyway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/store"
)

func main() {
	path := flag.String("db", "checkinblaze.db", "sqlite database path")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("seeded", *path)
}

func run(path string) error {
	log := logging.GetLogger()

	client, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	if err := client.EnsureTables(core.Tables()...); err != nil {
		return err
	}

	audit := core.NewAuditService(client.Table(core.TableAuditLogs), log)
	checkins := core.NewCheckInService(client.Table(core.TableCheckInRecords), audit, log)
	headcount := core.NewHeadcountService(client.Table(core.TableHeadcountCampaigns), audit, log)
	prefs := core.NewPreferenceService(client.Table(core.TableUserPreferences), audit, log)

	ctx := context.Background()

	lat, lng := -33.8688, 151.2093
	users := []struct {
		id, name, email string
	}{
		{"u-alice", "Alice Nguyen", "alice@example.com"},
		{"u-bob", "Bob Mercer", "bob@example.com"},
		{"u-carol", "Carol Diaz", "carol@example.com"},
	}

	for _, u := range users {
		if _, err := prefs.GetOrCreate(ctx, u.id); err != nil {
			return err
		}
		record := &model.CheckInRecord{
			UserID:            u.id,
			UserDisplayName:   u.name,
			UserEmail:         u.email,
			Latitude:          &lat,
			Longitude:         &lng,
			LocationPrecision: model.PrecisionCityWide,
			Status:            model.StatusOK,
			Notes:             "All good",
		}
		if _, err := checkins.Create(ctx, record, u.id); err != nil {
			return err
		}
	}

	campaign := &model.HeadcountCampaign{
		Title:           "Fire drill " + time.Now().Format("2006-01-02"),
		Description:     "Quarterly evacuation drill",
		TargetedUserIDs: model.UserIDSet{"u-alice", "u-bob", "u-carol"},
	}
	created, err := headcount.Create(ctx, campaign, "u-manager", "Dana the Manager")
	if err != nil {
		return err
	}

	if _, err := headcount.RecordResponse(ctx, "u-manager", created.ID, "u-alice", false); err != nil {
		return err
	}
	if _, err := headcount.RecordResponse(ctx, "u-manager", created.ID, "u-bob", true); err != nil {
		return err
	}

	// Bob needs assistance; give him a matching check-in for the campaign.
	bobCheckIn := &model.CheckInRecord{
		UserID:              "u-bob",
		UserDisplayName:     "Bob Mercer",
		UserEmail:           "bob@example.com",
		Status:              model.StatusNeedsAssistance,
		Notes:               "Trapped on level 3",
		HeadcountCampaignID: created.ID,
	}
	if _, err := checkins.Create(ctx, bobCheckIn, "u-bob"); err != nil {
		return err
	}

	return nil
}
