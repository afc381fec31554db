package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/web/common"
)

type DiagnosticsEndpoint struct {
	checkins *core.CheckInService
	log      *logrus.Logger
}

func RegisterDiagnostics(r *gin.RouterGroup, checkins *core.CheckInService, log *logrus.Logger) {
	ep := &DiagnosticsEndpoint{checkins: checkins, log: log}
	r.GET("/test/storage", ep.Storage)
}

// Storage round-trips a throwaway record so operators can verify table
// connectivity without touching real data.
func (ep *DiagnosticsEndpoint) Storage(c *gin.Context) {
	if err := ep.checkins.VerifyStorage(c.Request.Context()); err != nil {
		logging.LogError(ep.log, "handlers", "DiagnosticsStorage", "", err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("storage verification failed"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"storage": "ok"}))
}
