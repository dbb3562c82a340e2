package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// JSONDoc is an arbitrary JSON document stored in a text column. Layout and
// items are owned by the frontend so the backend never looks inside.
type JSONDoc json.RawMessage

// Value implements the driver.Valuer interface
func (d JSONDoc) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "null", nil
	}

	if !json.Valid(d) {
		return nil, fmt.Errorf("invalid JSON document, %q", string(d))
	}

	return string(d), nil
}

// Scan implements the sql.Scanner interface
func (d *JSONDoc) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = JSONDoc("null")
	case string:
		*d = JSONDoc(v)
	case []byte:
		*d = append(JSONDoc(nil), v...)
	default:
		return fmt.Errorf("failed to scan JSONDoc, %v", value)
	}

	return nil
}

func (d JSONDoc) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}

	return d, nil
}

func (d *JSONDoc) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

// GormDataType keeps the column a plain text column on every driver
func (JSONDoc) GormDataType() string {
	return "text"
}
