package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardChangePassword sets the viewing password. Sending an empty or
// null password removes it.
func DashboardChangePassword(c *gin.Context, d *internal.Deps) {
	var data passwordBody
	if err := d.Validator.BindRequest(c.Request, "dashboard_password", &data); err != nil {
		c.Error(err)
		return
	}

	if err := d.Dashboards.SetPassword(c.Request.Context(), data.DashboardID, c.GetString("userID"), data.Password); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
