package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type accessBody struct {
	DashboardID string `json:"dashboardId"`
	User        *struct {
		ID string `json:"id"`
	} `json:"user"`
}

// DashboardCheckPasswordNeeded is public. The viewer identity comes from the
// body and is only used to recognize the owner.
func DashboardCheckPasswordNeeded(c *gin.Context, d *internal.Deps) {
	var data accessBody
	if err := d.Validator.BindRequest(c.Request, "access", &data); err != nil {
		c.Error(err)
		return
	}

	var viewer string
	if data.User != nil {
		viewer = data.User.ID
	}

	st, err := d.Dashboards.CheckPasswordNeeded(c.Request.Context(), data.DashboardID, viewer)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, st)
}
