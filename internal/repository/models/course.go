package models

import (
	"database/sql"
	"time"
)

// Course maps a row of the courses table.
type Course struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Color       string    `db:"color"`
	Difficulty  string    `db:"difficulty"`
	Duration    string    `db:"duration"`
	StagesCount int       `db:"stages_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// LearningStage maps a row of the learning_stages table.
type LearningStage struct {
	ID            string         `db:"id"`
	CourseID      string         `db:"course_id"`
	OrderIndex    int            `db:"order_index"`
	Name          string         `db:"name"`
	Content       string         `db:"content"`
	VideoURL      sql.NullString `db:"video_url"`
	VideoDuration sql.NullInt32  `db:"video_duration"`
	ReadingTime   sql.NullString `db:"reading_time"`
	Difficulty    sql.NullString `db:"difficulty"`
	Tags          StringSlice    `db:"tags"`
	IsActive      bool           `db:"is_active"`
}

// Quiz maps a row of the quizzes table; questions live in a JSONB column.
type Quiz struct {
	ID           string        `db:"id"`
	CourseID     string        `db:"course_id"`
	OrderIndex   int           `db:"order_index"`
	Name         string        `db:"name"`
	Description  string        `db:"description"`
	Questions    QuestionList  `db:"questions"`
	TimeLimit    sql.NullInt32 `db:"time_limit"`
	PassingScore sql.NullInt32 `db:"passing_score"`
}
