package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*a = JSONBStringArray{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// JSONPreferences stores recommendation preferences as a JSON document. Absent keys stay nil
// so the pipeline can tell "unset" from an explicit value.
type JSONPreferences recommend.Preferences

func (p JSONPreferences) Value() (driver.Value, error) {
	b, err := json.Marshal(recommend.Preferences(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *JSONPreferences) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*p = JSONPreferences{}
		return nil
	}
	var prefs recommend.Preferences
	if err := json.Unmarshal(bytes, &prefs); err != nil {
		return err
	}
	*p = JSONPreferences(prefs)
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}
