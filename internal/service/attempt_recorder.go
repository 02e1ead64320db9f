package service

import (
	"context"
	"time"

	"finlearn/internal/domain"
	"finlearn/internal/logger"

	"go.uber.org/zap"
)

// AttemptRecorder persists quiz finishes and stage completions.
type AttemptRecorder interface {
	// RecordQuizAttempt stores one finished run and returns the updated
	// (user, quiz) record.
	RecordQuizAttempt(ctx context.Context, userID string, quiz *domain.Quiz, score, timeTaken int) (*domain.QuizAttempt, error)
	// RecordStageCompletion is idempotent; it reports whether a new record was written.
	RecordStageCompletion(ctx context.Context, userID string, stage *domain.LearningStage) (bool, error)
}

type attemptRecorder struct {
	repo domain.ProgressRepository
	now  func() time.Time
}

func NewAttemptRecorder(repo domain.ProgressRepository) AttemptRecorder {
	return &attemptRecorder{repo: repo, now: time.Now}
}

func (r *attemptRecorder) RecordQuizAttempt(ctx context.Context, userID string, quiz *domain.Quiz, score, timeTaken int) (*domain.QuizAttempt, error) {
	var errs domain.ValidationErrors
	if userID == "" {
		errs = append(errs, domain.NewMissingFieldError("user_id"))
	}
	if quiz == nil || quiz.ID == "" {
		errs = append(errs, domain.NewMissingFieldError("quiz_id"))
	}
	if score < 0 || score > 100 {
		errs = append(errs, domain.NewOutOfRangeError("score", score, 0, 100))
	}
	if timeTaken < 0 {
		errs = append(errs, domain.NewInvalidFormatError("time_taken", timeTaken))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	attempt := domain.FirstAttempt(userID, quiz.ID, quiz.CourseID, score, timeTaken, r.now().UTC())
	stored, err := r.repo.UpsertQuizAttempt(ctx, &attempt)
	if err != nil {
		logger.Get().Error("Failed to record quiz attempt",
			zap.String("userID", userID),
			zap.String("quizID", quiz.ID),
			zap.Error(err))
		return nil, domain.NewPersistenceError("Failed to save quiz progress", err)
	}
	logger.Get().Debug("Quiz attempt recorded",
		zap.String("userID", userID),
		zap.String("quizID", quiz.ID),
		zap.Int("score", stored.Score),
		zap.Int("bestScore", stored.BestScore),
		zap.Int("attempts", stored.AttemptsCount))
	return stored, nil
}

func (r *attemptRecorder) RecordStageCompletion(ctx context.Context, userID string, stage *domain.LearningStage) (bool, error) {
	if userID == "" {
		return false, domain.ValidationErrors{domain.NewMissingFieldError("user_id")}
	}
	if stage == nil || stage.ID == "" {
		return false, domain.ValidationErrors{domain.NewMissingFieldError("learning_stage_id")}
	}

	created, err := r.repo.InsertStageCompletion(ctx, &domain.StageCompletion{
		UserID:          userID,
		CourseID:        stage.CourseID,
		LearningStageID: stage.ID,
		CompletedAt:     r.now().UTC(),
	})
	if err != nil {
		logger.Get().Error("Failed to record stage completion",
			zap.String("userID", userID),
			zap.String("stageID", stage.ID),
			zap.Error(err))
		return false, domain.NewPersistenceError("Failed to mark stage complete", err)
	}
	return created, nil
}
