package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"finlearn/internal/domain"
)

// scanJSON decodes a JSONB column delivered as bytes or text. NULL and empty
// values leave dest untouched.
func scanJSON(value interface{}, dest interface{}) (bool, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return false, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return false, fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

// StringSlice stores a []string as a JSON array.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(value interface{}) error {
	var out []string
	ok, err := scanJSON(value, &out)
	if err != nil {
		return fmt.Errorf("StringSlice scan: %w", err)
	}
	if !ok || out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// QuestionList stores quiz questions as a JSON document.
type QuestionList []domain.Question

func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]domain.Question(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (q *QuestionList) Scan(value interface{}) error {
	var out []domain.Question
	ok, err := scanJSON(value, &out)
	if err != nil {
		return fmt.Errorf("QuestionList scan: %w", err)
	}
	if !ok || out == nil {
		out = []domain.Question{}
	}
	*q = out
	return nil
}
