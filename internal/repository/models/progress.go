package models

import "time"

// UserQuizProgress maps a row of user_quiz_progress.
type UserQuizProgress struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	QuizID        string    `db:"quiz_id"`
	CourseID      string    `db:"course_id"`
	Score         int       `db:"score"`
	BestScore     int       `db:"best_score"`
	AttemptsCount int       `db:"attempts_count"`
	TimeTaken     int       `db:"time_taken"`
	CompletedAt   time.Time `db:"completed_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// UserLearningStageProgress maps a row of user_learning_stage_progress.
type UserLearningStageProgress struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	CourseID        string    `db:"course_id"`
	LearningStageID string    `db:"learning_stage_id"`
	CompletedAt     time.Time `db:"completed_at"`
}

// CourseCount is one row of a per-course GROUP BY count.
type CourseCount struct {
	CourseID string `db:"course_id"`
	Count    int    `db:"count"`
}
