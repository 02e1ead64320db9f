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

// The conflict branch mirrors domain.QuizAttempt.Next; PostgreSQL evaluates
// the increment and GREATEST under the row lock.
const upsertQuizAttemptQuery = `
INSERT INTO user_quiz_progress (
	id, user_id, quiz_id, course_id, score, best_score, attempts_count,
	time_taken, completed_at, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $5, 1, $6, $7, $7, $7
)
ON CONFLICT (user_id, quiz_id) DO UPDATE SET
	score          = EXCLUDED.score,
	best_score     = GREATEST(user_quiz_progress.best_score, EXCLUDED.score),
	attempts_count = user_quiz_progress.attempts_count + 1,
	time_taken     = EXCLUDED.time_taken,
	completed_at   = EXCLUDED.completed_at,
	updated_at     = EXCLUDED.updated_at
RETURNING id, user_id, quiz_id, course_id, score, best_score, attempts_count,
	time_taken, completed_at, created_at, updated_at`

const insertStageCompletionQuery = `
INSERT INTO user_learning_stage_progress (id, user_id, course_id, learning_stage_id, completed_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, learning_stage_id) DO NOTHING`

// ProgressDatabaseAdapter implements domain.ProgressRepository on PostgreSQL.
type ProgressDatabaseAdapter struct {
	db *sqlx.DB
}

func NewProgressDatabaseAdapter(db *sqlx.DB) domain.ProgressRepository {
	return &ProgressDatabaseAdapter{db: db}
}

func (a *ProgressDatabaseAdapter) UpsertQuizAttempt(ctx context.Context, attempt *domain.QuizAttempt) (*domain.QuizAttempt, error) {
	if attempt == nil {
		return nil, fmt.Errorf("cannot record nil attempt")
	}
	id := attempt.ID
	if id == "" {
		id = util.NewUUID()
	}

	var row models.UserQuizProgress
	err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, upsertQuizAttemptQuery,
		id,
		attempt.UserID,
		attempt.QuizID,
		attempt.CourseID,
		attempt.Score,
		attempt.TimeTaken,
		attempt.CompletedAt,
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert quiz attempt for user %s quiz %s: %w", attempt.UserID, attempt.QuizID, err)
	}
	return toDomainAttempt(&row), nil
}

func (a *ProgressDatabaseAdapter) GetQuizAttempt(ctx context.Context, userID, quizID string) (*domain.QuizAttempt, error) {
	var row models.UserQuizProgress
	query := `SELECT id, user_id, quiz_id, course_id, score, best_score, attempts_count,
		time_taken, completed_at, created_at, updated_at
	FROM user_quiz_progress WHERE user_id = $1 AND quiz_id = $2`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, userID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz attempt: %w", err)
	}
	return toDomainAttempt(&row), nil
}

func (a *ProgressDatabaseAdapter) InsertStageCompletion(ctx context.Context, c *domain.StageCompletion) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("cannot record nil stage completion")
	}
	id := c.ID
	if id == "" {
		id = util.NewUUID()
	}
	res, err := GetExecutor(ctx, a.db).ExecContext(ctx, insertStageCompletionQuery,
		id, c.UserID, c.CourseID, c.LearningStageID, c.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert stage completion for user %s stage %s: %w", c.UserID, c.LearningStageID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (a *ProgressDatabaseAdapter) GetStageCompletion(ctx context.Context, userID, stageID string) (*domain.StageCompletion, error) {
	var row models.UserLearningStageProgress
	query := `SELECT id, user_id, course_id, learning_stage_id, completed_at
	FROM user_learning_stage_progress WHERE user_id = $1 AND learning_stage_id = $2`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, userID, stageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stage completion: %w", err)
	}
	return &domain.StageCompletion{
		ID:              row.ID,
		UserID:          row.UserID,
		CourseID:        row.CourseID,
		LearningStageID: row.LearningStageID,
		CompletedAt:     row.CompletedAt,
	}, nil
}

func (a *ProgressDatabaseAdapter) ListCompletedStageItems(ctx context.Context, userID, courseID string) ([]domain.ContentItem, error) {
	items := []domain.ContentItem{}
	query := `SELECT s.id, s.course_id, s.order_index
	FROM user_learning_stage_progress p
	JOIN learning_stages s ON s.id = p.learning_stage_id
	WHERE p.user_id = $1 AND p.course_id = $2
	ORDER BY s.order_index`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &items, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("failed to list completed stages: %w", err)
	}
	return items, nil
}

func (a *ProgressDatabaseAdapter) ListCompletedQuizItems(ctx context.Context, userID, courseID string) ([]domain.ContentItem, error) {
	items := []domain.ContentItem{}
	query := `SELECT q.id, q.course_id, q.order_index
	FROM user_quiz_progress p
	JOIN quizzes q ON q.id = p.quiz_id
	WHERE p.user_id = $1 AND p.course_id = $2
	ORDER BY q.order_index`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &items, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("failed to list completed quizzes: %w", err)
	}
	return items, nil
}

func (a *ProgressDatabaseAdapter) CountCompletedByCourse(ctx context.Context, userID string) (map[string]int, map[string]int, error) {
	stages, err := countByCourse(ctx, GetExecutor(ctx, a.db),
		`SELECT course_id, COUNT(*) AS count FROM user_learning_stage_progress WHERE user_id = $1 GROUP BY course_id`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count completed stages: %w", err)
	}
	quizzes, err := countByCourse(ctx, GetExecutor(ctx, a.db),
		`SELECT course_id, COUNT(*) AS count FROM user_quiz_progress WHERE user_id = $1 GROUP BY course_id`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count completed quizzes: %w", err)
	}
	return stages, quizzes, nil
}

func (a *ProgressDatabaseAdapter) ListLatestScores(ctx context.Context, userID string) ([]int, error) {
	scores := []int{}
	query := `SELECT score FROM user_quiz_progress WHERE user_id = $1`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &scores, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return scores, nil
}

func toDomainAttempt(m *models.UserQuizProgress) *domain.QuizAttempt {
	if m == nil {
		return nil
	}
	return &domain.QuizAttempt{
		ID:            m.ID,
		UserID:        m.UserID,
		QuizID:        m.QuizID,
		CourseID:      m.CourseID,
		Score:         m.Score,
		BestScore:     m.BestScore,
		AttemptsCount: m.AttemptsCount,
		TimeTaken:     m.TimeTaken,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
