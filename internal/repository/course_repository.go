package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finlearn/internal/domain"
	"finlearn/internal/repository/models"
	"finlearn/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	courseColumns = `id, slug, name, description, icon, color, difficulty, duration, stages_count, created_at`
	stageColumns  = `id, course_id, order_index, name, content, video_url, video_duration, reading_time, difficulty, tags, is_active`
	quizColumns   = `id, course_id, order_index, name, description, questions, time_limit, passing_score`
)

// CourseDatabaseAdapter implements domain.CourseRepository on PostgreSQL.
type CourseDatabaseAdapter struct {
	db *sqlx.DB
}

func NewCourseDatabaseAdapter(db *sqlx.DB) domain.CourseRepository {
	return &CourseDatabaseAdapter{db: db}
}

func (a *CourseDatabaseAdapter) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	var rows []models.Course
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at, name`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	out := make([]*domain.Course, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainCourse(&rows[i]))
	}
	return out, nil
}

func (a *CourseDatabaseAdapter) GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	var row models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course %q: %w", slug, err)
	}
	return toDomainCourse(&row), nil
}

func (a *CourseDatabaseAdapter) ListStages(ctx context.Context, courseID string) ([]*domain.LearningStage, error) {
	var rows []models.LearningStage
	query := `SELECT ` + stageColumns + ` FROM learning_stages WHERE course_id = $1 ORDER BY order_index`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list stages of course %s: %w", courseID, err)
	}
	out := make([]*domain.LearningStage, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainStage(&rows[i]))
	}
	return out, nil
}

func (a *CourseDatabaseAdapter) GetStage(ctx context.Context, courseID string, orderIndex int) (*domain.LearningStage, error) {
	var row models.LearningStage
	query := `SELECT ` + stageColumns + ` FROM learning_stages WHERE course_id = $1 AND order_index = $2`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, courseID, orderIndex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stage %d of course %s: %w", orderIndex, courseID, err)
	}
	return toDomainStage(&row), nil
}

func (a *CourseDatabaseAdapter) GetQuiz(ctx context.Context, courseID string, orderIndex int) (*domain.Quiz, error) {
	var row models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE course_id = $1 AND order_index = $2`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, courseID, orderIndex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %d of course %s: %w", orderIndex, courseID, err)
	}
	return toDomainQuiz(&row), nil
}

func (a *CourseDatabaseAdapter) ListStageItems(ctx context.Context, courseID string) ([]domain.ContentItem, error) {
	items := []domain.ContentItem{}
	query := `SELECT id, course_id, order_index FROM learning_stages WHERE course_id = $1 ORDER BY order_index`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list stage items of course %s: %w", courseID, err)
	}
	return items, nil
}

func (a *CourseDatabaseAdapter) ListQuizItems(ctx context.Context, courseID string) ([]domain.ContentItem, error) {
	items := []domain.ContentItem{}
	query := `SELECT id, course_id, order_index FROM quizzes WHERE course_id = $1 ORDER BY order_index`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list quiz items of course %s: %w", courseID, err)
	}
	return items, nil
}

func (a *CourseDatabaseAdapter) CountItemsByCourse(ctx context.Context) (map[string]int, map[string]int, error) {
	stages, err := countByCourse(ctx, GetExecutor(ctx, a.db),
		`SELECT course_id, COUNT(*) AS count FROM learning_stages GROUP BY course_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count stages: %w", err)
	}
	quizzes, err := countByCourse(ctx, GetExecutor(ctx, a.db),
		`SELECT course_id, COUNT(*) AS count FROM quizzes GROUP BY course_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	return stages, quizzes, nil
}

func countByCourse(ctx context.Context, db DBTX, query string, args ...interface{}) (map[string]int, error) {
	var rows []models.CourseCount
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.CourseID] = r.Count
	}
	return out, nil
}

func toDomainCourse(m *models.Course) *domain.Course {
	if m == nil {
		return nil
	}
	return &domain.Course{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Icon:        m.Icon,
		Color:       m.Color,
		Difficulty:  m.Difficulty,
		Duration:    m.Duration,
		StagesCount: m.StagesCount,
		CreatedAt:   m.CreatedAt,
	}
}

func toDomainStage(m *models.LearningStage) *domain.LearningStage {
	if m == nil {
		return nil
	}
	stage := &domain.LearningStage{
		ID:          m.ID,
		CourseID:    m.CourseID,
		OrderIndex:  m.OrderIndex,
		Name:        m.Name,
		Content:     m.Content,
		VideoURL:    m.VideoURL.String,
		ReadingTime: m.ReadingTime.String,
		Difficulty:  m.Difficulty.String,
		Tags:        []string(m.Tags),
		IsActive:    m.IsActive,
	}
	if d := util.NullInt32ToPtr(m.VideoDuration); d != nil {
		stage.VideoDuration = *d
	}
	if stage.Tags == nil {
		stage.Tags = []string{}
	}
	return stage
}

// toDomainQuiz fills the defaults for rows without time limit or passing score.
func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	passing := domain.DefaultPassingScore
	if m.PassingScore.Valid {
		passing = int(m.PassingScore.Int32)
	}
	questions := []domain.Question(m.Questions)
	if questions == nil {
		questions = []domain.Question{}
	}
	return &domain.Quiz{
		ID:           m.ID,
		CourseID:     m.CourseID,
		OrderIndex:   m.OrderIndex,
		Title:        m.Name,
		Description:  m.Description,
		Questions:    questions,
		TimeLimit:    util.NullInt32ToPtr(m.TimeLimit),
		PassingScore: passing,
	}
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	return &models.Quiz{
		ID:           q.ID,
		CourseID:     q.CourseID,
		OrderIndex:   q.OrderIndex,
		Name:         q.Title,
		Description:  q.Description,
		Questions:    models.QuestionList(q.Questions),
		TimeLimit:    util.IntPtrToNullInt32(q.TimeLimit),
		PassingScore: sql.NullInt32{Int32: int32(q.PassingScore), Valid: true},
	}
}
