package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/web/common"
)

type AuditEndpoint struct {
	audit *core.AuditService
	log   *logrus.Logger
}

func RegisterAudit(r *gin.RouterGroup, audit *core.AuditService, log *logrus.Logger) {
	ep := &AuditEndpoint{audit: audit, log: log}
	r.GET("/audit/recent", ep.Recent)
	r.GET("/audit/:entityType/:entityId", ep.ForEntity)
}

func (ep *AuditEndpoint) Recent(c *gin.Context) {
	maxResults := 0
	if val, err := strconv.Atoi(c.Query("maxResults")); err == nil {
		maxResults = val
	}

	logs, err := ep.audit.GetRecent(c.Request.Context(), maxResults)
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(logs, int64(len(logs))))
}

func (ep *AuditEndpoint) ForEntity(c *gin.Context) {
	logs, err := ep.audit.GetForEntity(c.Request.Context(), c.Param("entityType"), c.Param("entityId"))
	if err != nil {
		c.JSON(common.StatusFromError(err), common.NewErrorResponse(common.AbortMessage(err)))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(logs, int64(len(logs))))
}
