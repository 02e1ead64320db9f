package dto

import (
	"time"

	"finlearn/internal/domain"
)

// CheckAnswerRequest asks whether one answer is correct
// @Description Answer is a string for single choice and an array for multiple choice
type CheckAnswerRequest struct {
	QuestionID string        `json:"question_id" validate:"required"`
	Answer     domain.Answer `json:"answer" swaggertype:"object"`
}

// CheckAnswerResponse reports one answer's correctness together with the
// quiz progress bar value for that question.
type CheckAnswerResponse struct {
	QuestionID     string `json:"question_id"`
	Correct        bool   `json:"correct"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
	Progress       int    `json:"progress"`
}

// SubmitQuizRequest finishes a quiz run, either by the learner or on timer expiry
// @Description Map of question id to answer
type SubmitQuizRequest struct {
	Answers   domain.Answers `json:"answers" swaggertype:"object"`
	TimeTaken int            `json:"time_taken" validate:"min=0"`
}

// AttemptResponse is the stored attempt record after a finish.
type AttemptResponse struct {
	Score         int       `json:"score"`
	BestScore     int       `json:"best_score"`
	AttemptsCount int       `json:"attempts_count"`
	TimeTaken     int       `json:"time_taken"`
	CompletedAt   time.Time `json:"completed_at"`
}

func NewAttemptResponse(a *domain.QuizAttempt) AttemptResponse {
	return AttemptResponse{
		Score:         a.Score,
		BestScore:     a.BestScore,
		AttemptsCount: a.AttemptsCount,
		TimeTaken:     a.TimeTaken,
		CompletedAt:   a.CompletedAt,
	}
}

// SubmitQuizResponse combines the scored run and the updated attempt record.
type SubmitQuizResponse struct {
	Result  domain.QuizResult `json:"result"`
	Attempt AttemptResponse   `json:"attempt"`
}
