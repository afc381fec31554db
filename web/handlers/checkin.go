package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/directory"
	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/web/common"
	"github.com/checkinblaze/checkinblaze/web/middlewares"
)

type CheckInEndpoint struct {
	checkins  *core.CheckInService
	headcount *core.HeadcountService
	directory *directory.Client
	log       *logrus.Logger
}

func RegisterCheckIns(r *gin.RouterGroup, checkins *core.CheckInService, headcount *core.HeadcountService, dir *directory.Client, log *logrus.Logger) {
	ep := &CheckInEndpoint{checkins: checkins, headcount: headcount, directory: dir, log: log}
	r.POST("/checkins", ep.Create)
	r.GET("/checkins/latest", ep.Latest)
	r.GET("/checkins/history", ep.History)
	r.GET("/checkins/needsassistance", ep.NeedsAssistance)
	r.GET("/checkins/user/:userId", ep.UserHistory)
	r.PUT("/checkins/:checkInId", ep.Update)
	r.POST("/checkins/:userId/:checkInId/acknowledge", ep.Acknowledge)
	r.POST("/checkins/:userId/:checkInId/resolve", ep.Resolve)
}

type CheckInCreateDTO struct {
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	LocationPrecision   string   `json:"locationPrecision" binding:"omitempty,oneof=CityWide Precise"`
	Status              string   `json:"status" binding:"omitempty,oneof=OK NeedsAssistance"`
	Notes               string   `json:"notes" binding:"max=2000"`
	HeadcountCampaignID string   `json:"headcountCampaignId"`
	CampaignInitiatorID string   `json:"campaignInitiatorId"`
}

func (ep *CheckInEndpoint) Create(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	var dto CheckInCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	record := &model.CheckInRecord{
		UserID:              principal.UserID,
		UserDisplayName:     principal.DisplayName,
		UserEmail:           principal.UPN,
		Latitude:            dto.Latitude,
		Longitude:           dto.Longitude,
		LocationPrecision:   model.ParseLocationPrecision(dto.LocationPrecision),
		Status:              model.ParseSafetyStatus(dto.Status),
		Notes:               dto.Notes,
		HeadcountCampaignID: dto.HeadcountCampaignID,
	}

	// Directory enrichment is best effort. A check-in during an outage is
	// worth more than a complete profile.
	if ep.directory != nil {
		if profile, err := ep.directory.Users.Me(c.Request.Context()); err == nil {
			if profile.Mail != "" {
				record.UserEmail = profile.Mail
			}
			record.UserJobTitle = profile.JobTitle
			record.UserDepartment = profile.Department
			record.UserOfficeLocation = profile.OfficeLocation
		} else {
			logging.LogError(ep.log, "handlers", "CheckInCreate", "directory me", err)
		}
	}

	created, err := ep.checkins.Create(c.Request.Context(), record, principal.UserID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}

	// A check-in tied to a campaign also counts as that campaign's response.
	if dto.HeadcountCampaignID != "" && dto.CampaignInitiatorID != "" {
		needsAssistance := created.Status == model.StatusNeedsAssistance
		if _, err := ep.headcount.RecordResponse(c.Request.Context(), dto.CampaignInitiatorID, dto.HeadcountCampaignID, principal.UserID, needsAssistance); err != nil {
			logging.LogError(ep.log, "handlers", "CheckInCreate", "record campaign response", err)
		}
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(created))
}

func (ep *CheckInEndpoint) Latest(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	latest, err := ep.checkins.GetLatest(c.Request.Context(), principal.UserID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(latest))
}

func (ep *CheckInEndpoint) History(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}
	ep.history(c, principal.UserID)
}

func (ep *CheckInEndpoint) UserHistory(c *gin.Context) {
	ep.history(c, c.Param("userId"))
}

func (ep *CheckInEndpoint) history(c *gin.Context, userID string) {
	maxResults := 0
	if val, err := strconv.Atoi(c.Query("maxResults")); err == nil {
		maxResults = val
	}

	records, err := ep.checkins.GetHistory(c.Request.Context(), userID, maxResults)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

func (ep *CheckInEndpoint) NeedsAssistance(c *gin.Context) {
	records, err := ep.checkins.ListNeedingAssistance(c.Request.Context())
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
}

type CheckInUpdateDTO struct {
	Notes  string `json:"notes" binding:"max=2000"`
	Status string `json:"status" binding:"omitempty,oneof=OK NeedsAssistance"`
	State  string `json:"state" binding:"omitempty,oneof=Submitted Acknowledged Resolved"`
}

func (ep *CheckInEndpoint) Update(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	var dto CheckInUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	// Only the caller's own record is addressable here; managers act through
	// the acknowledge and resolve endpoints.
	existing, err := ep.checkins.Get(c.Request.Context(), principal.UserID, c.Param("checkInId"))
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("check-in not found"))
		return
	}

	existing.Notes = dto.Notes
	if dto.Status != "" {
		existing.Status = model.ParseSafetyStatus(dto.Status)
	}
	if dto.State != "" {
		existing.State = model.ParseCheckInState(dto.State)
	}

	updated, err := ep.checkins.Update(c.Request.Context(), existing, principal.UserID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
}

func (ep *CheckInEndpoint) Acknowledge(c *gin.Context) {
	ep.transition(c, ep.checkins.Acknowledge)
}

func (ep *CheckInEndpoint) Resolve(c *gin.Context) {
	ep.transition(c, ep.checkins.Resolve)
}

type transitionFunc func(ctx context.Context, userID, checkInID, byUserID, byDisplayName string) (*model.CheckInRecord, error)

func (ep *CheckInEndpoint) transition(c *gin.Context, fn transitionFunc) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}

	updated, err := fn(c.Request.Context(), c.Param("userId"), c.Param("checkInId"), principal.UserID, principal.DisplayName)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
}
