package source

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SourceFetch(c *gin.Context, d *internal.Deps) {
	name := c.Query("name")
	if name == "" {
		c.Error(apperr.Validation("name query parameter is required"))
		return
	}

	src, err := d.Sources.FindByName(c.Request.Context(), c.GetString("userID"), name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"source":  src,
	})
}
