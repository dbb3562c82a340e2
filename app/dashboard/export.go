package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func DashboardExport(c *gin.Context, d *internal.Deps) {
	if d.Snapshots == nil {
		c.Error(apperr.WithStatus(http.StatusServiceUnavailable, "snapshot storage is not configured"))
		return
	}

	var data refBody
	if err := d.Validator.BindRequest(c.Request, "dashboard_ref", &data); err != nil {
		c.Error(err)
		return
	}

	db, err := d.Dashboards.FindOwned(c.Request.Context(), data.DashboardID, c.GetString("userID"))
	if err != nil {
		c.Error(err)
		return
	}

	key, err := service.ExportSnapshot(c.Request.Context(), d.Snapshots, db, time.Now())
	if err != nil {
		c.Error(err)
		return
	}

	zap.L().Info("Exported dashboard snapshot", zap.String("key", key), zap.String("requestID", c.GetString("requestID")))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
	})
}
