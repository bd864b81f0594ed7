package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB maps a Postgres jsonb column to map[string]any for use with
// sqlx / database/sql. Usage events carry provider-specific metadata
// in a column of this type.
type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONB: expected []byte, got %T", value)
	}

	if len(b) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(b, j)
}
