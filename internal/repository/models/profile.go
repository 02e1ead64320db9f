package models

import (
	"database/sql"
	"time"
)

// Profile maps a row of the profiles table.
type Profile struct {
	ID              string         `db:"id"`
	FullName        string         `db:"full_name"`
	Email           string         `db:"email"`
	AvatarPath      sql.NullString `db:"avatar_path"`
	AvatarUpdatedAt sql.NullTime   `db:"avatar_updated_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
