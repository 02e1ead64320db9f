package domain

import (
	"context"
	"io"
	"time"
)

// TransactionManager runs fn inside one database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CourseRepository reads published course content. Single-row lookups return
// (nil, nil) when nothing matches.
type CourseRepository interface {
	ListCourses(ctx context.Context) ([]*Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*Course, error)
	ListStages(ctx context.Context, courseID string) ([]*LearningStage, error)
	GetStage(ctx context.Context, courseID string, orderIndex int) (*LearningStage, error)
	GetQuiz(ctx context.Context, courseID string, orderIndex int) (*Quiz, error)
	ListStageItems(ctx context.Context, courseID string) ([]ContentItem, error)
	ListQuizItems(ctx context.Context, courseID string) ([]ContentItem, error)
	// CountItemsByCourse returns stage and quiz totals for every course.
	CountItemsByCourse(ctx context.Context) (stages map[string]int, quizzes map[string]int, err error)
}

// ProgressRepository persists attempt and stage-completion records.
type ProgressRepository interface {
	// UpsertQuizAttempt applies QuizAttempt.Next atomically, inserting the
	// first attempt when none exists, and returns the stored row.
	UpsertQuizAttempt(ctx context.Context, attempt *QuizAttempt) (*QuizAttempt, error)
	GetQuizAttempt(ctx context.Context, userID, quizID string) (*QuizAttempt, error)
	// InsertStageCompletion reports whether a new record was written; an
	// existing one is left untouched.
	InsertStageCompletion(ctx context.Context, completion *StageCompletion) (bool, error)
	GetStageCompletion(ctx context.Context, userID, stageID string) (*StageCompletion, error)
	ListCompletedStageItems(ctx context.Context, userID, courseID string) ([]ContentItem, error)
	ListCompletedQuizItems(ctx context.Context, userID, courseID string) ([]ContentItem, error)
	// CountCompletedByCourse returns per-course completed stage and quiz counts for userID.
	CountCompletedByCourse(ctx context.Context, userID string) (stages map[string]int, quizzes map[string]int, err error)
	ListLatestScores(ctx context.Context, userID string) ([]int, error)
}

// ProfileRepository stores the editable part of a user's account.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	// SetAvatarPath stores or clears the avatar key; at becomes the avatar version.
	SetAvatarPath(ctx context.Context, userID string, path *string, at time.Time) error
	// GetPreferences returns the defaults when the user has no stored document.
	GetPreferences(ctx context.Context, userID string) (Preferences, error)
	// MergePreferences applies update on top of the stored document in one
	// statement and returns the result.
	MergePreferences(ctx context.Context, userID string, update PreferencesUpdate, at time.Time) (Preferences, error)
}

// ObjectStorage is the blob store holding avatar images.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}

// ContentWriter loads course content; every method is an upsert keyed by the
// natural key (slug, or course and order index) and returns the stored id.
type ContentWriter interface {
	SaveCourse(ctx context.Context, course *Course) (string, error)
	SaveStage(ctx context.Context, stage *LearningStage) (string, error)
	SaveQuiz(ctx context.Context, quiz *Quiz) (string, error)
}
