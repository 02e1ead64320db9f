package util

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID returns a lexically sortable id for request and notification ids.
func NewULID() string {
	return ulid.Make().String()
}

// NewUUID returns a random UUID for primary keys of PostgreSQL rows.
func NewUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}
