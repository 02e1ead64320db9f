package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the claims of a bearer token issued by the identity
// provider. The user id is the subject.
type AuthClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *AuthClaims) UserID() string {
	return c.Subject
}

// ProfileResponse defines the structure for a user's profile information.
type ProfileResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateProfileRequest represents the request body for a profile change
// @Description Request body for updating the profile
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdatePreferencesRequest represents the request body for a preferences change
// @Description Language and notification settings; the stored theme is kept
type UpdatePreferencesRequest struct {
	Language      string `json:"language" validate:"required,oneof=en es fr de"`
	Notifications *bool  `json:"notifications" validate:"required"`
}

// AvatarResponse carries the public avatar URL, empty when none is set.
type AvatarResponse struct {
	URL string `json:"url"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}
