package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type idBody struct {
	ID string `json:"id"`
}

func DashboardDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	var data idBody
	if err := d.Validator.BindRequest(c.Request, "id", &data); err != nil {
		c.Error(err)
		return
	}

	if err := d.Dashboards.Delete(c.Request.Context(), data.ID, userID); err != nil {
		c.Error(err)
		return
	}

	// Snapshots are only a convenience, the dashboard is gone either way
	if d.Snapshots != nil {
		err := d.Snapshots.DeletePrefix(c.Request.Context(), service.SnapshotPrefix(userID, data.ID))
		if err != nil {
			zap.L().Warn("Failed to delete dashboard snapshots", zap.Error(err), zap.String("dashboardID", data.ID), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
