package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type cloneBody struct {
	DashboardID string `json:"dashboardId"`
	Name        string `json:"name"`
}

func DashboardClone(c *gin.Context, d *internal.Deps) {
	var data cloneBody
	if err := d.Validator.BindRequest(c.Request, "clone", &data); err != nil {
		c.Error(err)
		return
	}

	if _, err := d.Dashboards.Clone(c.Request.Context(), data.DashboardID, c.GetString("userID"), data.Name); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
