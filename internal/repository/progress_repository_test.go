package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"finlearn/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var attemptCols = []string{"id", "user_id", "quiz_id", "course_id", "score", "best_score", "attempts_count", "time_taken", "completed_at", "created_at", "updated_at"}

func TestProgressDatabaseAdapter_UpsertQuizAttempt(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProgressDatabaseAdapter(db)
	now := time.Now()
	query := regexp.QuoteMeta(`ON CONFLICT (user_id, quiz_id) DO UPDATE SET`)

	t.Run("returns the merged row", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(sqlmock.AnyArg(), "u1", "q1", "c1", 50, 7, now).
			WillReturnRows(sqlmock.NewRows(attemptCols).
				AddRow("a1", "u1", "q1", "c1", 50, 80, 3, 7, now, now.Add(-time.Hour), now))

		attempt := domain.FirstAttempt("u1", "q1", "c1", 50, 7, now)
		stored, err := repo.UpsertQuizAttempt(context.Background(), &attempt)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.Score)
		assert.Equal(t, 80, stored.BestScore)
		assert.Equal(t, 3, stored.AttemptsCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(errors.New("deadlock detected"))

		attempt := domain.FirstAttempt("u1", "q1", "c1", 50, 7, now)
		_, err := repo.UpsertQuizAttempt(context.Background(), &attempt)
		assert.ErrorContains(t, err, "deadlock detected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil attempt", func(t *testing.T) {
		_, err := repo.UpsertQuizAttempt(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestProgressDatabaseAdapter_UpsertStatementShape(t *testing.T) {
	assert.Contains(t, upsertQuizAttemptQuery, "attempts_count = user_quiz_progress.attempts_count + 1")
	assert.Contains(t, upsertQuizAttemptQuery, "GREATEST(user_quiz_progress.best_score, EXCLUDED.score)")
	assert.Contains(t, insertStageCompletionQuery, "DO NOTHING")
}

func TestProgressDatabaseAdapter_InsertStageCompletion(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProgressDatabaseAdapter(db)
	query := regexp.QuoteMeta(`ON CONFLICT (user_id, learning_stage_id) DO NOTHING`)
	completion := &domain.StageCompletion{UserID: "u1", CourseID: "c1", LearningStageID: "s1", CompletedAt: time.Now()}

	mock.ExpectExec(query).
		WithArgs(sqlmock.AnyArg(), "u1", "c1", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := repo.InsertStageCompletion(context.Background(), completion)
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec(query).
		WithArgs(sqlmock.AnyArg(), "u1", "c1", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	created, err = repo.InsertStageCompletion(context.Background(), completion)
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressDatabaseAdapter_CompletedItems(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProgressDatabaseAdapter(db)
	cols := []string{"id", "course_id", "order_index"}

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN learning_stages s ON s.id = p.learning_stage_id`)).
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s1", "c1", 1).AddRow("s3", "c1", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN quizzes q ON q.id = p.quiz_id`)).
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows(cols))

	stages, err := repo.ListCompletedStageItems(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ContentItem{{ID: "s1", CourseID: "c1", OrderIndex: 1}, {ID: "s3", CourseID: "c1", OrderIndex: 3}}, stages)

	quizzes, err := repo.ListCompletedQuizItems(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Empty(t, quizzes)
	assert.NotNil(t, quizzes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressDatabaseAdapter_CountsAndScores(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewProgressDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_learning_stage_progress WHERE user_id = $1 GROUP BY course_id`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "count"}).AddRow("c1", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_quiz_progress WHERE user_id = $1 GROUP BY course_id`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "count"}).AddRow("c1", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT score FROM user_quiz_progress WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(80).AddRow(90))

	stages, quizzes, err := repo.CountCompletedByCourse(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stages["c1"])
	assert.Equal(t, 2, quizzes["c1"])

	scores, err := repo.ListLatestScores(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{80, 90}, scores)
	assert.NoError(t, mock.ExpectationsWereMet())
}
