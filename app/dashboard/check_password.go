package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type passwordBody struct {
	DashboardID string `json:"dashboardId"`
	Password    string `json:"password"`
}

func DashboardCheckPassword(c *gin.Context, d *internal.Deps) {
	var data passwordBody
	if err := d.Validator.BindRequest(c.Request, "dashboard_password", &data); err != nil {
		c.Error(err)
		return
	}

	res, err := d.Dashboards.CheckPassword(c.Request.Context(), data.DashboardID, data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}
