package middleware

import (
	"bitwise74/dashboard-api/pkg/validators"
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// NewSchemaGuard rejects requests whose body doesn't match schemaID before
// any later middleware runs. The normalized body is put back for the handler.
func NewSchemaGuard(v *validators.Validator, schemaID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc map[string]json.RawMessage
		if err := v.BindRequest(c.Request, schemaID, &doc); err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		body, err := json.Marshal(doc)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
