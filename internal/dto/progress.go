package dto

import "time"

// SaveQuizProgressRequest records a quiz score computed by the client
// @Description Quiz progress write
type SaveQuizProgressRequest struct {
	CourseSlug string `json:"course_slug" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"min=1"`
	Score      int    `json:"score" validate:"min=0,max=100"`
	TimeTaken  int    `json:"time_taken" validate:"min=0"`
}

// StageCompletionResponse reports whether a stage is complete for the caller.
type StageCompletionResponse struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QuizAttemptStatusResponse is the caller's stored record for one quiz.
type QuizAttemptStatusResponse struct {
	Attempted bool             `json:"attempted"`
	Attempt   *AttemptResponse `json:"attempt,omitempty"`
}
