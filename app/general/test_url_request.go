package general

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// GeneralTestURLRequest performs a request on behalf of the dashboard editor
// so it can preview what a REST source returns
func GeneralTestURLRequest(c *gin.Context, d *internal.Deps) {
	url := c.Query("url")
	if url == "" {
		c.Error(apperr.Validation("url query parameter is required"))
		return
	}

	method := strings.ToUpper(c.DefaultQuery("type", http.MethodGet))

	var params map[string]any
	if raw := c.Query("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			c.Error(apperr.Validation("params must be a JSON object"))
			return
		}
	}

	var body json.RawMessage
	if raw := c.Query("requestBody"); raw != "" {
		if !json.Valid([]byte(raw)) {
			c.Error(apperr.Validation("requestBody must be valid JSON"))
			return
		}
		body = json.RawMessage(raw)
	}

	res, err := d.Prober.Do(c.Request.Context(), service.ProbeRequest{
		URL:    url,
		Method: method,
		Params: params,
		Body:   body,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(res.Status, gin.H{
		"status":   res.Status,
		"response": res.Body,
	})
}
