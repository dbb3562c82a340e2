package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type refBody struct {
	DashboardID string `json:"dashboardId"`
}

func DashboardShare(c *gin.Context, d *internal.Deps) {
	var data refBody
	if err := d.Validator.BindRequest(c.Request, "dashboard_ref", &data); err != nil {
		c.Error(err)
		return
	}

	shared, err := d.Dashboards.ToggleShared(c.Request.Context(), data.DashboardID, c.GetString("userID"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"shared":  shared,
	})
}
