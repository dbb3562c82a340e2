// Package source contains the broker source endpoints. Every handler runs
// behind the access gate.
package source

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SourceList(c *gin.Context, d *internal.Deps) {
	sources, err := d.Sources.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sources": sources,
	})
}
