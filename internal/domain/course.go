package domain

import "time"

// Course is the top-level learning unit, addressed publicly by slug.
type Course struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Icon        string
	Color       string
	Difficulty  string
	Duration    string
	StagesCount int
	CreatedAt   time.Time
}

// LearningStage is one lesson of a course. Its quiz shares the same order index.
type LearningStage struct {
	ID            string
	CourseID      string
	OrderIndex    int
	Name          string
	Content       string
	VideoURL      string
	VideoDuration int
	ReadingTime   string
	Difficulty    string
	Tags          []string
	IsActive      bool
}

// ContentItem is the minimal (id, order index) pair used for progress lookups.
type ContentItem struct {
	ID         string `db:"id"`
	CourseID   string `db:"course_id"`
	OrderIndex int    `db:"order_index"`
}
