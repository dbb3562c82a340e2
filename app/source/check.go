package source

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkBody struct {
	Sources []string `json:"sources"`
}

// SourceCheck creates placeholders for the sources an imported dashboard
// refers to but the user doesn't have
func SourceCheck(c *gin.Context, d *internal.Deps) {
	var data checkBody
	if err := d.Validator.BindRequest(c.Request, "source_names", &data); err != nil {
		c.Error(err)
		return
	}

	created, err := d.Sources.Ensure(c.Request.Context(), c.GetString("userID"), data.Sources)
	if err != nil {
		c.Error(err)
		return
	}

	if len(created) > 0 {
		zap.L().Debug("Created missing sources", zap.Strings("names", created), zap.String("requestID", c.GetString("requestID")))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"newSources": created,
	})
}
