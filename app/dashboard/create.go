package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type nameBody struct {
	Name string `json:"name"`
}

func DashboardCreate(c *gin.Context, d *internal.Deps) {
	var data nameBody
	if err := d.Validator.BindRequest(c.Request, "named", &data); err != nil {
		c.Error(err)
		return
	}

	if _, err := d.Dashboards.Create(c.Request.Context(), c.GetString("userID"), data.Name); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
