package source

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SourceChange(c *gin.Context, d *internal.Deps) {
	var data sourceBody
	if err := d.Validator.BindRequest(c.Request, "source_change", &data); err != nil {
		c.Error(err)
		return
	}

	if err := d.Sources.Change(c.Request.Context(), c.GetString("userID"), data.model()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
