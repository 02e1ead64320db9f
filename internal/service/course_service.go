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

var errEmptyQuiz = errors.New("quiz has no questions")

// CourseService serves published course content together with the caller's
// completion state.
type CourseService interface {
	ListCourses(ctx context.Context) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, slug string) (*dto.CourseResponse, error)
	ListStages(ctx context.Context, userID, slug string) ([]dto.StageResponse, error)
	GetStage(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageResponse, error)
	GetQuiz(ctx context.Context, slug string, orderIndex int) (*dto.QuizResponse, error)
}

type courseService struct {
	courses  domain.CourseRepository
	progress domain.ProgressRepository
}

func NewCourseService(courses domain.CourseRepository, progress domain.ProgressRepository) CourseService {
	return &courseService{courses: courses, progress: progress}
}

func (s *courseService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load courses", err)
	}
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, dto.NewCourseResponse(c))
	}
	return out, nil
}

func (s *courseService) GetCourse(ctx context.Context, slug string) (*dto.CourseResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

func (s *courseService) ListStages(ctx context.Context, userID, slug string) ([]dto.StageResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}

	var stages []*domain.LearningStage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stages, err = s.courses.ListStages(gctx, course.ID)
		return err
	})
	var done completionSets
	g.Go(func() error {
		var err error
		done, err = loadCompletionSets(gctx, s.progress, userID, course.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewPersistenceError("Failed to load stages", err)
	}

	out := make([]dto.StageResponse, 0, len(stages))
	for _, st := range stages {
		out = append(out, dto.NewStageResponse(st, done.stage(st.OrderIndex), done.quiz(st.OrderIndex), false))
	}
	return out, nil
}

func (s *courseService) GetStage(ctx context.Context, userID, slug string, orderIndex int) (*dto.StageResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	stage, err := findStage(ctx, s.courses, course, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	done, err := loadCompletionSets(ctx, s.progress, userID, course.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load stage progress", err)
	}
	resp := dto.NewStageResponse(stage, done.stage(orderIndex), done.quiz(orderIndex), true)
	return &resp, nil
}

func (s *courseService) GetQuiz(ctx context.Context, slug string, orderIndex int) (*dto.QuizResponse, error) {
	course, err := findCourse(ctx, s.courses, slug)
	if err != nil {
		return nil, err
	}
	quiz, err := findQuiz(ctx, s.courses, course, slug, orderIndex)
	if err != nil {
		return nil, err
	}
	resp := dto.NewQuizResponse(quiz)
	return &resp, nil
}

func findCourse(ctx context.Context, repo domain.CourseRepository, slug string) (*domain.Course, error) {
	course, err := repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load course", err)
	}
	if course == nil {
		return nil, domain.NewCourseNotFoundError(slug)
	}
	return course, nil
}

func findStage(ctx context.Context, repo domain.CourseRepository, course *domain.Course, slug string, orderIndex int) (*domain.LearningStage, error) {
	stage, err := repo.GetStage(ctx, course.ID, orderIndex)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load stage", err)
	}
	if stage == nil {
		return nil, domain.NewStageNotFoundError(slug, orderIndex)
	}
	return stage, nil
}

func findQuiz(ctx context.Context, repo domain.CourseRepository, course *domain.Course, slug string, orderIndex int) (*domain.Quiz, error) {
	quiz, err := repo.GetQuiz(ctx, course.ID, orderIndex)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(slug, orderIndex)
	}
	if len(quiz.Questions) == 0 {
		logger.Get().Error("Stored quiz has no questions",
			zap.String("courseID", course.ID),
			zap.Int("orderIndex", orderIndex))
		return nil, domain.NewInternalError("Quiz content is invalid", errEmptyQuiz)
	}
	// Anything else is served as is; the validator scores a broken question as incorrect.
	if err := quiz.Validate(); err != nil {
		logger.Get().Warn("Stored quiz has structural anomalies",
			zap.String("courseID", course.ID),
			zap.Int("orderIndex", orderIndex),
			zap.Error(err))
	}
	return quiz, nil
}

// completionSets holds the order indexes a user has completed in one course.
type completionSets struct {
	stages  map[int]struct{}
	quizzes map[int]struct{}
}

func (c completionSets) stage(orderIndex int) bool {
	_, ok := c.stages[orderIndex]
	return ok
}

func (c completionSets) quiz(orderIndex int) bool {
	_, ok := c.quizzes[orderIndex]
	return ok
}

func loadCompletionSets(ctx context.Context, repo domain.ProgressRepository, userID, courseID string) (completionSets, error) {
	stageItems, err := repo.ListCompletedStageItems(ctx, userID, courseID)
	if err != nil {
		return completionSets{}, err
	}
	quizItems, err := repo.ListCompletedQuizItems(ctx, userID, courseID)
	if err != nil {
		return completionSets{}, err
	}
	return completionSets{stages: orderSet(stageItems), quizzes: orderSet(quizItems)}, nil
}

func orderSet(items []domain.ContentItem) map[int]struct{} {
	set := make(map[int]struct{}, len(items))
	for _, it := range items {
		set[it.OrderIndex] = struct{}{}
	}
	return set
}

func orderIndexes(items []domain.ContentItem) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.OrderIndex)
	}
	return out
}
