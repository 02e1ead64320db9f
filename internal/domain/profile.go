package domain

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Profile is the user-editable account record. The user id comes from the
// identity provider.
type Profile struct {
	ID         string
	FullName   string
	Email      string
	AvatarPath *string
	// AvatarUpdatedAt is the write time of the current avatar and versions its URL.
	AvatarUpdatedAt time.Time
	UpdatedAt       time.Time
}

// ProfileUpdate is a requested change to name and email.
type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Normalize trims surrounding whitespace from every field.
func (u ProfileUpdate) Normalize() ProfileUpdate {
	return ProfileUpdate{
		FullName: strings.TrimSpace(u.FullName),
		Email:    strings.TrimSpace(u.Email),
	}
}

func (u ProfileUpdate) Validate() error {
	var errs ValidationErrors
	if u.FullName == "" {
		errs = append(errs, NewMissingFieldError("full_name"))
	}
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	} else if !emailPattern.MatchString(u.Email) {
		errs = append(errs, NewInvalidFormatError("email", u.Email))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply returns a copy of p carrying the update.
func (p Profile) Apply(u ProfileUpdate, now time.Time) Profile {
	p.FullName = u.FullName
	p.Email = u.Email
	p.UpdatedAt = now
	return p
}

// NotificationKind classifies messages pushed to a user's inbox.
type NotificationKind string

const (
	NotificationProfileUpdateFailed NotificationKind = "profile_update_failed"
	NotificationProfileUpdated      NotificationKind = "profile_updated"
)

// Notification is a user-facing message delivered on the next inbox read.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// Avatar upload constraints.
const (
	MaxAvatarBytes = 5 << 20
)

// AvatarExtension maps an accepted image content type to its file extension.
func AvatarExtension(contentType string) (string, bool) {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return "jpg", true
	case "image/png":
		return "png", true
	default:
		return "", false
	}
}

// AvatarPath is the object key of a user's avatar inside the avatar bucket.
func AvatarPath(userID, ext string) string {
	return userID + "." + ext
}
