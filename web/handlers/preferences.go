package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/model"
	"github.com/checkinblaze/checkinblaze/web/common"
	"github.com/checkinblaze/checkinblaze/web/middlewares"
)

type PreferencesEndpoint struct {
	prefs *core.PreferenceService
	log   *logrus.Logger
}

func RegisterPreferences(r *gin.RouterGroup, prefs *core.PreferenceService, log *logrus.Logger) {
	ep := &PreferencesEndpoint{prefs: prefs, log: log}
	r.GET("/preferences", ep.Get)
	r.PUT("/preferences", ep.Put)
	r.GET("/preferences/:targetUserId", ep.GetForUser)
	r.PUT("/preferences/:targetUserId", ep.PutForUser)
}

func (ep *PreferencesEndpoint) Get(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}
	ep.get(c, principal.UserID)
}

func (ep *PreferencesEndpoint) GetForUser(c *gin.Context) {
	ep.get(c, c.Param("targetUserId"))
}

func (ep *PreferencesEndpoint) get(c *gin.Context, userID string) {
	prefs, err := ep.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(prefs))
}

type PreferencesDTO struct {
	DefaultLocationPrecision string `json:"defaultLocationPrecision" binding:"omitempty,oneof=CityWide Precise"`
	EnableLocationServices   *bool  `json:"enableLocationServices"`
	EnableTeamsNotifications *bool  `json:"enableTeamsNotifications"`
}

func (ep *PreferencesEndpoint) Put(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}
	ep.put(c, principal.UserID, principal.UserID)
}

func (ep *PreferencesEndpoint) PutForUser(c *gin.Context) {
	principal, ok := middlewares.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("not authenticated"))
		return
	}
	ep.put(c, c.Param("targetUserId"), principal.UserID)
}

func (ep *PreferencesEndpoint) put(c *gin.Context, userID, requestorID string) {
	var dto PreferencesDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	// Fields absent from the request keep their stored values.
	prefs, err := ep.prefs.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}

	if dto.DefaultLocationPrecision != "" {
		prefs.DefaultLocationPrecision = model.ParseLocationPrecision(dto.DefaultLocationPrecision)
	}
	if dto.EnableLocationServices != nil {
		prefs.EnableLocationServices = *dto.EnableLocationServices
	}
	if dto.EnableTeamsNotifications != nil {
		prefs.EnableTeamsNotifications = *dto.EnableTeamsNotifications
	}

	saved, err := ep.prefs.Save(c.Request.Context(), prefs, requestorID)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(saved))
}
