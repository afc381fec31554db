package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/directory"
	"github.com/checkinblaze/checkinblaze/infrastructure/communication"
	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/report"
	"github.com/checkinblaze/checkinblaze/utils"
	"github.com/checkinblaze/checkinblaze/web/common"
	"github.com/checkinblaze/checkinblaze/web/middlewares"
)

type HeadcountEndpoint struct {
	headcount *core.HeadcountService
	checkins  *core.CheckInService
	directory *directory.Client
	notifier  *communication.Service
	log       *logrus.Logger
}

func RegisterHeadcount(r *gin.RouterGroup, headcount *core.HeadcountService, checkins *core.CheckInService, dir *directory.Client, notifier *communication.Service, log *logrus.Logger) {
	ep := &HeadcountEndpoint{headcount: headcount, checkins: checkins, directory: dir, notifier: notifier, log: log}
	r.POST("/headcount", ep.Create)
	r.GET("/headcount/active", ep.Active)
	r.GET("/headcount/mine", ep.Mine)
	r.GET("/headcount/:campaignId", ep.Get)
	r.GET("/headcount/:campaignId/checkins", ep.CheckIns)
	r.GET("/headcount/:campaignId/report", ep.Report)
	r.PUT("/headcount/:campaignId/status", ep.UpdateStatus)
	r.POST("/headcount/:campaignId/respond", ep.Respond)
	r.POST("/headcount/:campaignId/notify", ep.Notify)
}

type HeadcountCreateDTO struct {
	Title           string   `json:"title" binding:"required,max=200"`
	Description     string   `json:"description" binding:"max=2000"`
	TargetedUserIDs []string `json:"targetedUserIds"`
	Notes           string   `json:"notes" binding:"max=2000"`
}

func (ep *HeadcountEndpoint) Create(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	var dto HeadcountCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	targets := model.UserIDSet{}
	for _, id := range dto.TargetedUserIDs {
		targets.Add(id)
	}

	// An empty target list means "my direct reports".
	if len(targets) == 0 && ep.directory != nil {
		reports, err := ep.directory.Users.DirectReports(c.Request.Context())
		if err != nil {
			logging.LogError(ep.log, "handlers", "HeadcountCreate", "direct reports", err)
			c.JSON(http.StatusBadGateway, common.NewErrorResponse("could not resolve direct reports"))
			return
		}
		for _, profile := range reports {
			targets.Add(profile.ID)
		}
	}

	campaign := &model.HeadcountCampaign{
		Title:           dto.Title,
		Description:     dto.Description,
		InitiatedByUPN:  principal.UPN,
		TargetedUserIDs: targets,
		Notes:           dto.Notes,
	}

	created, err := ep.headcount.Create(c.Request.Context(), campaign, principal.UserID, principal.DisplayName)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(created))
}

func (ep *HeadcountEndpoint) Active(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	campaigns, err := ep.headcount.ListActive(c.Request.Context(), principal.UserID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(campaigns, int64(len(campaigns))))
}

func (ep *HeadcountEndpoint) Mine(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	campaigns, err := ep.headcount.ListAllForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(campaigns, int64(len(campaigns))))
}

// initiatorID resolves the campaign's partition: the initiator's user ID,
// taken from the query string when a non-initiator is looking at a campaign
// they were targeted by.
func (ep *HeadcountEndpoint) initiatorID(c *gin.Context) string {
	if id := c.Query("initiatorId"); id != "" {
		return id
	}
	principal, _ := middlewares.PrincipalFrom(c)
	return principal.UserID
}

func (ep *HeadcountEndpoint) fetch(c *gin.Context) *model.HeadcountCampaign {
	campaign, err := ep.headcount.Get(c.Request.Context(), ep.initiatorID(c), c.Param("campaignId"))
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return nil
	}
	if campaign == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("campaign not found"))
		return nil
	}
	return campaign
}

func (ep *HeadcountEndpoint) Get(c *gin.Context) {
	campaign := ep.fetch(c)
	if campaign == nil {
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(campaign))
}

func (ep *HeadcountEndpoint) CheckIns(c *gin.Context) {
	records, err := ep.checkins.ListByCampaign(c.Request.Context(), c.Param("campaignId"))
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

func (ep *HeadcountEndpoint) Report(c *gin.Context) {
	campaign := ep.fetch(c)
	if campaign == nil {
		return
	}

	records, err := ep.checkins.ListByCampaign(c.Request.Context(), campaign.ID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}

	workbook, err := report.CampaignWorkbook(campaign, records)
	if err != nil {
		logging.LogError(ep.log, "handlers", "HeadcountReport", campaign.ID, err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to build report"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="headcount-%s.xlsx"`, campaign.ID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		logging.LogError(ep.log, "handlers", "HeadcountReport", "write", err)
	}
}

type HeadcountStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=Active Paused Completed Expired Cancelled"`
}

func (ep *HeadcountEndpoint) UpdateStatus(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	var dto HeadcountStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	updated, err := ep.headcount.UpdateStatus(
		c.Request.Context(),
		ep.initiatorID(c),
		c.Param("campaignId"),
		model.ParseCampaignStatus(dto.Status),
		principal.UserID,
		principal.DisplayName,
	)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
}

type HeadcountRespondDTO struct {
	InitiatorID     string `json:"initiatorId" binding:"required"`
	NeedsAssistance bool   `json:"needsAssistance"`
}

func (ep *HeadcountEndpoint) Respond(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	var dto HeadcountRespondDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	updated, err := ep.headcount.RecordResponse(
		c.Request.Context(),
		dto.InitiatorID,
		c.Param("campaignId"),
		principal.UserID,
		dto.NeedsAssistance,
	)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
}

func (ep *HeadcountEndpoint) Notify(c *gin.Context) {
	campaign := ep.fetch(c)
	if campaign == nil {
		return
	}

	if ep.notifier == nil {
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"notified": false}))
		return
	}

	// Resolve targeted users to email addresses. Lookup failures skip the
	// user rather than blocking the rest of the fan-out.
	var profiles []*directory.UserProfile
	if ep.directory != nil {
		for _, userID := range campaign.TargetedUserIDs {
			profile, err := ep.directory.Users.User(c.Request.Context(), userID)
			if err != nil {
				logging.LogError(ep.log, "handlers", "HeadcountNotify", userID, err)
				continue
			}
			profiles = append(profiles, profile)
		}
	}
	recipients := utils.Map(
		utils.Filter(profiles, func(p *directory.UserProfile) bool { return p.Mail != "" }),
		func(p *directory.UserProfile) string { return p.Mail },
	)

	if err := ep.notifier.NotifyCampaign(c.Request.Context(), campaign, recipients); err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("notification delivery failed"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"notified": true, "recipients": len(recipients)}))
}
