// Package general contains public endpoints that aren't tied to a user
package general

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func GeneralStatistics(c *gin.Context, d *internal.Deps) {
	st, err := service.CollectStats(c.Request.Context(), d.DB)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"users":      st.Users,
		"dashboards": st.Dashboards,
		"views":      st.Views,
		"sources":    st.Sources,
	})
}
