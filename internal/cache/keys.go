package cache

import "strings"

const (
	GlobalKeyPrefix = "finlearn"
)

// GenerateCacheKey builds prefix:service:type:id, with any params joined by
// "_" and appended as a final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// CourseProgressKey caches one user's progress in one course under the
// user's current progress generation.
func CourseProgressKey(userID, courseID, generation string) string {
	return GenerateCacheKey("progress", "course", userID, courseID, generation)
}

// ProgressGenerationKey holds the user's progress generation. Rotating it
// orphans every entry written under the previous value.
func ProgressGenerationKey(userID string) string {
	return GenerateCacheKey("progress", "generation", userID)
}

// CourseProgressIndexKey is the hash listing every cached course progress of
// a user, so all of them can be dropped together.
func CourseProgressIndexKey(userID string) string {
	return GenerateCacheKey("progress", "index", userID)
}

func AvatarURLKey(userID string) string {
	return GenerateCacheKey("avatar", "url", userID)
}

func NotificationInboxKey(userID string) string {
	return GenerateCacheKey("notification", "inbox", userID)
}

// RevokedTokenKey marks a signed-out token id until the token expires.
func RevokedTokenKey(tokenID string) string {
	return GenerateCacheKey("auth", "revoked", tokenID)
}
