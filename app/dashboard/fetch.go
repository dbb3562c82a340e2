package dashboard

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardFetch returns a dashboard for editing along with the names of
// every source the owner has
func DashboardFetch(c *gin.Context, d *internal.Deps) {
	userID := c.GetString("userID")

	id := c.Query("id")
	if id == "" {
		c.Error(apperr.Validation("id query parameter is required"))
		return
	}

	db, err := d.Dashboards.FindOwned(c.Request.Context(), id, userID)
	if err != nil {
		c.Error(err)
		return
	}

	sources, err := d.Sources.Names(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dashboard": gin.H{
			"id":     db.ID,
			"name":   db.Name,
			"layout": db.Layout,
			"items":  db.Items,
			"nextId": db.NextID,
		},
		"sources": sources,
	})
}
