package service

import (
	"context"
	"errors"

	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressService derives course progress and records completions.
type ProgressService interface {
	GetCourseProgress(ctx context.Context, userID, slug string) (*domain.CourseProgress, error)
	GetAllCoursesProgress(ctx context.Context, userID string) ([]domain.CourseProgressSummary, error)
	MarkStageComplete(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageCompletionResponse, error)
	CheckStageCompletion(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageCompletionResponse, error)
	SaveQuizProgress(ctx context.Context, sub domain.QuizSubmission) (*domain.QuizAttempt, error)
	GetQuizAttempt(ctx context.Context, userID, slug string, orderIndex int) (*dto.QuizAttemptStatusResponse, error)
	// RecordQuiz stores a finish for an already resolved quiz and marks the
	// stage with the same order index complete in the same transaction.
	RecordQuiz(ctx context.Context, userID string, quiz *domain.Quiz, score, timeTaken int) (*domain.QuizAttempt, error)
	GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error)
	InvalidateUser(ctx context.Context, userID string)
}

type progressService struct {
	courses  domain.CourseRepository
	progress domain.ProgressRepository
	tx       domain.TransactionManager
	recorder AttemptRecorder
	cache    ProgressCache
}

func NewProgressService(
	courses domain.CourseRepository,
	progress domain.ProgressRepository,
	tx domain.TransactionManager,
	recorder AttemptRecorder,
	cache ProgressCache,
) ProgressService {
	if cache == nil {
		cache = noopProgressCache{}
	}
	return &progressService{
		courses:  courses,
		progress: progress,
		tx:       tx,
		recorder: recorder,
		cache:    cache,
	}
}

func (s *progressService) GetCourseProgress(ctx context.Context, userID, slug string) (*domain.CourseProgress, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}

	cached, gen, err := s.cache.Get(ctx, userID, course.ID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrProgressNotCached) {
		logger.Get().Warn("Progress cache read failed, computing from store",
			zap.String("userID", userID), zap.String("courseID", course.ID), zap.Error(err))
	}

	var stageItems, quizItems, doneStages, doneQuizzes []domain.ContentItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stageItems, err = s.courses.ListStageItems(gctx, course.ID)
		return err
	})
	g.Go(func() (err error) {
		quizItems, err = s.courses.ListQuizItems(gctx, course.ID)
		return err
	})
	g.Go(func() (err error) {
		doneStages, err = s.progress.ListCompletedStageItems(gctx, userID, course.ID)
		return err
	})
	g.Go(func() (err error) {
		doneQuizzes, err = s.progress.ListCompletedQuizItems(gctx, userID, course.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewPersistenceError("Failed to load course progress", err)
	}

	progress := domain.AggregateCourseProgress(domain.CourseProgressInput{
		CourseID:             course.ID,
		TotalStages:          len(stageItems),
		TotalQuizzes:         len(quizItems),
		CompletedStageOrders: orderIndexes(doneStages),
		CompletedQuizOrders:  orderIndexes(doneQuizzes),
	})

	if gen == "" {
		return &progress, nil
	}
	if err := s.cache.Put(ctx, userID, course.ID, gen, &progress); err != nil {
		logger.Get().Warn("Failed to cache course progress",
			zap.String("userID", userID), zap.String("courseID", course.ID), zap.Error(err))
	}
	return &progress, nil
}

func (s *progressService) GetAllCoursesProgress(ctx context.Context, userID string) ([]domain.CourseProgressSummary, error) {
	var (
		courses                   []*domain.Course
		totalStages, totalQuizzes map[string]int
		doneStages, doneQuizzes   map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.courses.ListCourses(gctx)
		return err
	})
	g.Go(func() (err error) {
		totalStages, totalQuizzes, err = s.courses.CountItemsByCourse(gctx)
		return err
	})
	g.Go(func() (err error) {
		doneStages, doneQuizzes, err = s.progress.CountCompletedByCourse(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewPersistenceError("Failed to load course progress", err)
	}

	ids := make([]string, 0, len(courses))
	counts := make(map[string]domain.CourseCounts, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		counts[c.ID] = domain.CourseCounts{
			CourseID:         c.ID,
			CompletedStages:  doneStages[c.ID],
			TotalStages:      totalStages[c.ID],
			CompletedQuizzes: doneQuizzes[c.ID],
			TotalQuizzes:     totalQuizzes[c.ID],
		}
	}
	return domain.AggregateAll(ids, counts), nil
}

func (s *progressService) MarkStageComplete(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageCompletionResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	stage, err := findStage(ctx, s.courses, course, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	if _, err := s.recorder.RecordStageCompletion(ctx, userID, stage); err != nil {
		return nil, err
	}
	s.InvalidateUser(ctx, userID)
	return s.stageCompletion(ctx, userID, stage)
}

func (s *progressService) CheckStageCompletion(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageCompletionResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	stage, err := findStage(ctx, s.courses, course, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	return s.stageCompletion(ctx, userID, stage)
}

func (s *progressService) stageCompletion(ctx context.Context, userID string, stage *domain.LearningStage) (*dto.StageCompletionResponse, error) {
	rec, err := s.progress.GetStageCompletion(ctx, userID, stage.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to check stage completion", err)
	}
	if rec == nil {
		return &dto.StageCompletionResponse{Completed: false}, nil
	}
	completedAt := rec.CompletedAt
	return &dto.StageCompletionResponse{Completed: true, CompletedAt: &completedAt}, nil
}

func (s *progressService) SaveQuizProgress(ctx context.Context, sub domain.QuizSubmission) (*domain.QuizAttempt, error) {
	course, err := findCourse(ctx, s.courses, sub.CourseSlug)
	if err != nil {
		return nil, err
	}
	quiz, err := findQuiz(ctx, s.courses, course, sub.CourseSlug, sub.OrderIndex)
	if err != nil {
		return nil, err
	}
	return s.RecordQuiz(ctx, sub.UserID, quiz, sub.Score, sub.TimeTaken)
}

func (s *progressService) GetQuizAttempt(ctx context.Context, userID, slug string, orderIndex int) (*dto.QuizAttemptStatusResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	quiz, err := findQuiz(ctx, s.courses, course, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	attempt, err := s.progress.GetQuizAttempt(ctx, userID, quiz.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load quiz attempt", err)
	}
	if attempt == nil {
		return &dto.QuizAttemptStatusResponse{Attempted: false}, nil
	}
	resp := dto.NewAttemptResponse(attempt)
	return &dto.QuizAttemptStatusResponse{Attempted: true, Attempt: &resp}, nil
}

func (s *progressService) RecordQuiz(ctx context.Context, userID string, quiz *domain.Quiz, score, timeTaken int) (*domain.QuizAttempt, error) {
	var attempt *domain.QuizAttempt
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		attempt, err = s.recorder.RecordQuizAttempt(txCtx, userID, quiz, score, timeTaken)
		if err != nil {
			return err
		}

		stage, err := s.courses.GetStage(txCtx, quiz.CourseID, quiz.OrderIndex)
		if err != nil {
			return domain.NewPersistenceError("Failed to load stage", err)
		}
		if stage == nil {
			logger.Get().Warn("Quiz has no matching stage",
				zap.String("courseID", quiz.CourseID), zap.Int("orderIndex", quiz.OrderIndex))
			return nil
		}
		_, err = s.recorder.RecordStageCompletion(txCtx, userID, stage)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateUser(ctx, userID)
	return attempt, nil
}

func (s *progressService) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	var (
		courses []domain.CourseProgressSummary
		scores  []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.GetAllCoursesProgress(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		scores, err = s.progress.ListLatestScores(gctx, userID)
		if err != nil {
			return domain.NewPersistenceError("Failed to load quiz scores", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats := domain.ComputeUserStats(courses, scores)
	return &stats, nil
}

// InvalidateUser drops every cached progress entry of userID. Failures are
// logged only.
func (s *progressService) InvalidateUser(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logger.Get().Warn("Failed to invalidate progress cache", zap.String("userID", userID), zap.Error(err))
	}
}
