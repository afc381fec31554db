// Package report renders headcount campaign results as an Excel workbook for
// distribution outside the application.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/checkinblaze/checkinblaze/model"
)

const (
	summarySheet = "Summary"
	rosterSheet  = "Roster"
)

// CampaignWorkbook builds a two-sheet workbook: a summary of the campaign's
// response counts and a per-user roster. Targeted users that have not
// responded appear in the roster with an empty status.
func CampaignWorkbook(campaign *model.HeadcountCampaign, checkIns []model.CheckInRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rosterSheet); err != nil {
		return nil, err
	}

	if err := writeSummary(f, campaign); err != nil {
		return nil, err
	}
	if err := writeRoster(f, campaign, checkIns); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeSummary(f *excelize.File, campaign *model.HeadcountCampaign) error {
	rows := [][]interface{}{
		{"Campaign", campaign.Title},
		{"Initiated by", campaign.InitiatedByDisplayName},
		{"Created", campaign.CreatedTimestamp.Format(time.RFC3339)},
		{"Status", string(campaign.Status)},
		{"Targeted", len(campaign.TargetedUserIDs)},
		{"Responded", len(campaign.RespondedUserIDs)},
		{"Need assistance", len(campaign.NeedAssistanceUserIDs)},
		{"Safe", len(campaign.SafeUserIDs)},
		{"Outstanding", len(campaign.TargetedUserIDs) - len(campaign.RespondedUserIDs)},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeRoster(f *excelize.File, campaign *model.HeadcountCampaign, checkIns []model.CheckInRecord) error {
	header := []interface{}{"User ID", "Display Name", "Status", "Responded At", "Notes"}
	if err := f.SetSheetRow(rosterSheet, "A1", &header); err != nil {
		return err
	}

	// Latest check-in per user wins; the input is newest first already.
	latest := map[string]*model.CheckInRecord{}
	for i := range checkIns {
		rec := &checkIns[i]
		if _, seen := latest[rec.UserID]; !seen {
			latest[rec.UserID] = rec
		}
	}

	rowNum := 2
	for _, userID := range campaign.TargetedUserIDs {
		row := []interface{}{userID, "", rosterStatus(campaign, userID), "", ""}
		if rec, ok := latest[userID]; ok {
			row[1] = rec.UserDisplayName
			row[3] = rec.Timestamp.Format(time.RFC3339)
			row[4] = rec.Notes
		}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return err
		}
		rowNum++
	}
	return f.SetColWidth(rosterSheet, "A", "E", 28)
}

func rosterStatus(campaign *model.HeadcountCampaign, userID string) string {
	switch {
	case campaign.NeedAssistanceUserIDs.Contains(userID):
		return "Needs assistance"
	case campaign.SafeUserIDs.Contains(userID):
		return "Safe"
	case campaign.RespondedUserIDs.Contains(userID):
		return "Responded"
	default:
		return ""
	}
}
