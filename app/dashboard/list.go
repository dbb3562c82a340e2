// Package dashboard contains the dashboard endpoints. Everything except the
// two password checks runs behind the access gate.
package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Views int    `json:"views"`
}

func DashboardList(c *gin.Context, d *internal.Deps) {
	dashboards, err := d.Dashboards.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]summary, 0, len(dashboards))
	for _, db := range dashboards {
		out = append(out, summary{ID: db.ID, Name: db.Name, Views: db.Views})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"dashboards": out,
	})
}
