package seedmodels

import "finlearn/internal/domain"

// SeedStage is one lesson entry in the JSON seed file.
type SeedStage struct {
	OrderIndex    int      `json:"order_index"`
	Name          string   `json:"name"`
	Content       string   `json:"content"`
	VideoURL      string   `json:"video_url"`
	VideoDuration int      `json:"video_duration"`
	ReadingTime   string   `json:"reading_time"`
	Difficulty    string   `json:"difficulty"`
	Tags          []string `json:"tags"`
}

// SeedQuiz is one quiz entry; questions use the stored JSON shape directly.
type SeedQuiz struct {
	OrderIndex   int               `json:"order_index"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	PassingScore int               `json:"passing_score"`
	TimeLimit    *int              `json:"time_limit"`
	Questions    []domain.Question `json:"questions"`
}

// SeedCourse is a top-level entry of the JSON seed file.
type SeedCourse struct {
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	Difficulty  string      `json:"difficulty"`
	Duration    string      `json:"duration"`
	Stages      []SeedStage `json:"stages"`
	Quizzes     []SeedQuiz  `json:"quizzes"`
}
