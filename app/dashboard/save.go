package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

type saveBody struct {
	ID     string        `json:"id"`
	Layout model.JSONDoc `json:"layout"`
	Items  model.JSONDoc `json:"items"`
	NextID int           `json:"nextId"`
}

func DashboardSave(c *gin.Context, d *internal.Deps) {
	var data saveBody
	if err := d.Validator.BindRequest(c.Request, "save", &data); err != nil {
		c.Error(err)
		return
	}

	err := d.Dashboards.Save(c.Request.Context(), data.ID, c.GetString("userID"), data.Layout, data.Items, data.NextID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
