package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used by uptime checks and the frontend to see if the server
// is alive
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
