// Package validators validates request bodies against the JSON schemas
// embedded in the binary
package validators

import (
	"bitwise74/dashboard-api/pkg/apperr"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator holds the compiled schemas keyed by their $id
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every embedded schema
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("cannot read schema dir, %w", err)
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("cannot read schema '%s', %w", e.Name(), err)
		}

		var head struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("parse error in schema '%s', %w", e.Name(), err)
		}

		if head.ID == "" {
			return nil, fmt.Errorf("schema '%s' does not contain $id", e.Name())
		}

		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s, %w", head.ID, err)
		}

		v.schemas[head.ID] = s
	}

	return v, nil
}

// MustNew is New for places where a broken embedded schema is a programming error
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}

	return v
}

// Bind decodes body into dst. Top-level strings other than passwords are
// trimmed and the email field is lowercased before the document is checked
// against schemaID. Everything else is bound from the original bytes, so
// nested documents keep their exact encoding.
func (v *Validator) Bind(body []byte, schemaID string, dst any) error {
	schema, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("unknown schema %s", schemaID)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return apperr.Validation("request body must be a JSON object")
	}

	changed := map[string]any{}
	for k, val := range doc {
		s, ok := val.(string)
		if !ok || k == "password" {
			continue
		}

		n := strings.TrimSpace(s)
		if k == "email" {
			n = strings.ToLower(n)
		}

		if n != s {
			doc[k] = n
			changed[k] = n
		}
	}

	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate against %s, %w", schemaID, err)
	}

	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}

		return apperr.Validation(strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("request body has the wrong shape")
	}

	if len(changed) == 0 {
		return nil
	}

	overlay, err := json.Marshal(changed)
	if err != nil {
		return err
	}

	return json.Unmarshal(overlay, dst)
}

// BindRequest reads the body of r and binds it like Bind. A body cut off by
// http.MaxBytesReader is reported as 413.
func (v *Validator) BindRequest(r *http.Request, schemaID string, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.WithStatus(http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
		}

		return apperr.Validation("failed to read request body")
	}

	return v.Bind(body, schemaID, dst)
}
