package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value any, dst any) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// StringList is a set of strings persisted as a JSON array.
type StringList []string

// Value implements the driver.Valuer interface for StringList
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue([]string(s))
}

// Scan implements the sql.Scanner interface for StringList
func (s *StringList) Scan(value interface{}) error {
	var out []string
	if err := jsonScan(value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// Contains reports whether v is in the list.
func (s StringList) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// FlagSet holds boolean profile attributes such as "smoking".
type FlagSet map[string]bool

func (f FlagSet) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return jsonValue(map[string]bool(f))
}

func (f *FlagSet) Scan(value interface{}) error {
	var out map[string]bool
	if err := jsonScan(value, &out); err != nil {
		return err
	}
	*f = out
	return nil
}
