package domain

import "time"

// QuizAttempt is the single persisted record per (user, quiz). Score is the
// latest attempt, BestScore the historical maximum.
type QuizAttempt struct {
	ID            string
	UserID        string
	QuizID        string
	CourseID      string
	Score         int
	BestScore     int
	AttemptsCount int
	TimeTaken     int // minutes
	CompletedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FirstAttempt builds the record written on a user's first finish of a quiz.
func FirstAttempt(userID, quizID, courseID string, score, timeTaken int, now time.Time) QuizAttempt {
	return QuizAttempt{
		UserID:        userID,
		QuizID:        quizID,
		CourseID:      courseID,
		Score:         score,
		BestScore:     score,
		AttemptsCount: 1,
		TimeTaken:     timeTaken,
		CompletedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Next returns the record after one more finish. The persistence layer applies
// the same rule inside its upsert statement.
func (a QuizAttempt) Next(score, timeTaken int, now time.Time) QuizAttempt {
	next := a
	next.Score = score
	next.AttemptsCount = a.AttemptsCount + 1
	if score > a.BestScore {
		next.BestScore = score
	}
	next.TimeTaken = timeTaken
	next.CompletedAt = now
	next.UpdatedAt = now
	return next
}

// StageCompletion marks a learning stage done for a user. Existence implies
// completion and the record is never updated once written.
type StageCompletion struct {
	ID              string
	UserID          string
	CourseID        string
	LearningStageID string
	CompletedAt     time.Time
}

// QuizSubmission is what the quiz flow hands to the attempt recorder.
type QuizSubmission struct {
	UserID     string
	CourseSlug string
	OrderIndex int
	Score      int
	TimeTaken  int
}
