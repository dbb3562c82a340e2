package general

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GeneralTestURL checks if a URL answers. The probed status is passed
// through as the status of the response.
func GeneralTestURL(c *gin.Context, d *internal.Deps) {
	url := c.Query("url")
	if url == "" {
		c.Error(apperr.Validation("url query parameter is required"))
		return
	}

	res, err := d.Prober.Do(c.Request.Context(), service.ProbeRequest{
		URL:    url,
		Method: http.MethodGet,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(res.Status, gin.H{
		"status": res.Status,
		"active": res.Status == http.StatusOK,
	})
}
