package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"finlearn/internal/database"
	"finlearn/internal/domain"
	"finlearn/internal/repository"
	"finlearn/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openMigratedDB applies every migration to the disposable database in
// APP_TEST_MIGRATE_URL (pgx5:// scheme) and returns a handle on it.
func openMigratedDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL tests in short mode.")
	}
	url := os.Getenv("APP_TEST_MIGRATE_URL")
	if url == "" {
		t.Skip("APP_TEST_MIGRATE_URL not set")
	}
	require.True(t, strings.HasPrefix(url, "pgx5://"), "APP_TEST_MIGRATE_URL must use the pgx5:// scheme")

	dir, err := filepath.Abs("../../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(url, dir, database.Up))

	db, err := sqlx.Connect("pgx", "postgres://"+strings.TrimPrefix(url, "pgx5://"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type seededContent struct {
	courseID, stageID, quizID string
}

func seedContent(t *testing.T, db *sqlx.DB) seededContent {
	t.Helper()
	ctx := context.Background()
	c := seededContent{courseID: util.NewUUID(), stageID: util.NewUUID(), quizID: util.NewUUID()}
	slug := "integration-" + strings.ToLower(util.NewULID())

	_, err := db.ExecContext(ctx, `INSERT INTO courses (id, slug, name, stages_count) VALUES ($1, $2, 'Integration', 1)`, c.courseID, slug)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO learning_stages (id, course_id, order_index, name) VALUES ($1, $2, 1, 'Stage')`, c.stageID, c.courseID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO quizzes (id, course_id, order_index, name, passing_score) VALUES ($1, $2, 1, 'Quiz', 70)`, c.quizID, c.courseID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM courses WHERE id = $1`, c.courseID)
	})
	return c
}

func TestProgressDatabaseAdapter_UpsertKeepsBestScoreAndCountsAttempts(t *testing.T) {
	db := openMigratedDB(t)
	content := seedContent(t, db)
	repo := repository.NewProgressDatabaseAdapter(db)
	ctx := context.Background()
	userID := util.NewUUID()
	start := time.Now().UTC().Truncate(time.Second)

	var want domain.QuizAttempt
	for i, score := range []int{60, 80, 50} {
		at := start.Add(time.Duration(i) * time.Minute)
		if i == 0 {
			want = domain.FirstAttempt(userID, content.quizID, content.courseID, score, i+3, at)
		} else {
			want = want.Next(score, i+3, at)
		}

		got, err := repo.UpsertQuizAttempt(ctx, &domain.QuizAttempt{
			UserID: userID, QuizID: content.quizID, CourseID: content.courseID,
			Score: score, TimeTaken: i + 3, CompletedAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, want.Score, got.Score, "attempt %d", i+1)
		assert.Equal(t, want.BestScore, got.BestScore, "attempt %d", i+1)
		assert.Equal(t, want.AttemptsCount, got.AttemptsCount, "attempt %d", i+1)
		assert.Equal(t, want.TimeTaken, got.TimeTaken, "attempt %d", i+1)
		assert.True(t, want.CompletedAt.Equal(got.CompletedAt), "attempt %d", i+1)
	}

	stored, err := repo.GetQuizAttempt(ctx, userID, content.quizID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 50, stored.Score)
	assert.Equal(t, 80, stored.BestScore)
	assert.Equal(t, 3, stored.AttemptsCount)

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows,
		`SELECT count(*) FROM user_quiz_progress WHERE user_id = $1 AND quiz_id = $2`, userID, content.quizID))
	assert.Equal(t, 1, rows)
}

func TestProgressDatabaseAdapter_ConcurrentSubmitsKeepOneRow(t *testing.T) {
	db := openMigratedDB(t)
	content := seedContent(t, db)
	repo := repository.NewProgressDatabaseAdapter(db)
	ctx := context.Background()
	userID := util.NewUUID()

	const submits = 8
	var wg sync.WaitGroup
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := repo.UpsertQuizAttempt(ctx, &domain.QuizAttempt{
				UserID: userID, QuizID: content.quizID, CourseID: content.courseID,
				Score: score, TimeTaken: 1, CompletedAt: time.Now().UTC(),
			})
			assert.NoError(t, err)
		}(40 + i*5)
	}
	wg.Wait()

	stored, err := repo.GetQuizAttempt(ctx, userID, content.quizID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, submits, stored.AttemptsCount)
	assert.Equal(t, 40+(submits-1)*5, stored.BestScore)
}

func TestProgressDatabaseAdapter_StageCompletionIsWrittenOnce(t *testing.T) {
	db := openMigratedDB(t)
	content := seedContent(t, db)
	repo := repository.NewProgressDatabaseAdapter(db)
	ctx := context.Background()
	userID := util.NewUUID()
	first := time.Now().UTC().Truncate(time.Second)

	created, err := repo.InsertStageCompletion(ctx, &domain.StageCompletion{
		UserID: userID, CourseID: content.courseID, LearningStageID: content.stageID, CompletedAt: first,
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.InsertStageCompletion(ctx, &domain.StageCompletion{
		UserID: userID, CourseID: content.courseID, LearningStageID: content.stageID, CompletedAt: first.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetStageCompletion(ctx, userID, content.stageID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, first.Equal(stored.CompletedAt), "completed_at must keep the first write")

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows,
		`SELECT count(*) FROM user_learning_stage_progress WHERE user_id = $1 AND learning_stage_id = $2`, userID, content.stageID))
	assert.Equal(t, 1, rows)
}

func TestProfileDatabaseAdapter_MergePreferencesKeepsTheme(t *testing.T) {
	db := openMigratedDB(t)
	repo := repository.NewProfileDatabaseAdapter(db)
	ctx := context.Background()
	userID := util.NewUUID()
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM profiles WHERE id = $1`, userID)
	})

	prefs, err := repo.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)

	prefs, err = repo.MergePreferences(ctx, userID, domain.PreferencesUpdate{Language: "es", Notifications: false}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{Theme: "dark", Language: "es", Notifications: false}, prefs)

	_, err = db.ExecContext(ctx, `UPDATE profiles SET preferences = preferences || '{"theme":"light"}'::jsonb WHERE id = $1`, userID)
	require.NoError(t, err)

	prefs, err = repo.MergePreferences(ctx, userID, domain.PreferencesUpdate{Language: "de", Notifications: true}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{Theme: "light", Language: "de", Notifications: true}, prefs)

	reread, err := repo.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, prefs, reread)
}
