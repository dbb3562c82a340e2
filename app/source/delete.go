package source

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type idBody struct {
	ID string `json:"id"`
}

func SourceDelete(c *gin.Context, d *internal.Deps) {
	var data idBody
	if err := d.Validator.BindRequest(c.Request, "id", &data); err != nil {
		c.Error(err)
		return
	}

	if err := d.Sources.Delete(c.Request.Context(), data.ID, c.GetString("userID")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
