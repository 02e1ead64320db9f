package service

import (
	"context"

	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/logger"

	"go.uber.org/zap"
)

// QuizService checks answers and finishes quiz runs.
type QuizService interface {
	CheckAnswer(ctx context.Context, slug string, orderIndex int, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error)
	// SubmitQuiz scores answers and records the attempt. Timer expiry submits
	// whatever was answered so far through the same call.
	SubmitQuiz(ctx context.Context, userID, slug string, orderIndex int, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
}

type quizService struct {
	courses  domain.CourseRepository
	progress ProgressService
}

func NewQuizService(courses domain.CourseRepository, progress ProgressService) QuizService {
	return &quizService{courses: courses, progress: progress}
}

func (s *quizService) loadQuiz(ctx context.Context, slug string, orderIndex int) (*domain.Quiz, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	return findQuiz(ctx, s.courses, course, slug, orderIndex)
}

func (s *quizService) CheckAnswer(ctx context.Context, slug string, orderIndex int, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
	quiz, err := s.loadQuiz(ctx, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	total := len(quiz.Questions)
	for i, q := range quiz.Questions {
		if q.ID == req.QuestionID {
			return &dto.CheckAnswerResponse{
				QuestionID:     q.ID,
				Correct:        domain.ValidateAnswer(q, req.Answer),
				QuestionNumber: i + 1,
				TotalQuestions: total,
				Progress:       domain.QuizProgress(i, total),
			}, nil
		}
	}
	return nil, domain.NewNotFoundError("Question not found").
		WithContext("question_id", req.QuestionID)
}

func (s *quizService) SubmitQuiz(ctx context.Context, userID, slug string, orderIndex int, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	quiz, err := s.loadQuiz(ctx, slug, orderIndex)
	if err != nil {
		return nil, err
	}

	result := domain.ScoreQuiz(quiz, req.Answers)
	attempt, err := s.progress.RecordQuiz(ctx, userID, quiz, result.Score, req.TimeTaken)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz submitted",
		zap.String("userID", userID),
		zap.String("quizID", quiz.ID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed))
	return &dto.SubmitQuizResponse{
		Result:  result,
		Attempt: dto.NewAttemptResponse(attempt),
	}, nil
}
