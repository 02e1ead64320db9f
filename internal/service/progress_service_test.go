package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type progressFixture struct {
	courses  *MockCourseRepository
	progress *MockProgressRepository
	tx       *MockTransactionManager
	cache    *MockCache
	svc      ProgressService
}

func newProgressFixture(withCache bool) *progressFixture {
	f := &progressFixture{
		courses:  new(MockCourseRepository),
		progress: new(MockProgressRepository),
		tx:       new(MockTransactionManager),
		cache:    new(MockCache),
	}
	var pc ProgressCache
	if withCache {
		pc = NewProgressCache(f.cache, time.Minute)
	} else {
		pc = NewProgressCache(nil, 0)
	}
	recorder := &attemptRecorder{repo: f.progress, now: func() time.Time {
		return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	}}
	f.svc = NewProgressService(f.courses, f.progress, f.tx, recorder, pc)
	return f
}

func TestProgressService_GetCourseProgress(t *testing.T) {
	f := newProgressFixture(false)
	ctx := context.Background()

	f.courses.On("GetCourseBySlug", ctx, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("ListStageItems", mock.Anything, "course-1").Return(items(1, 2, 3, 4, 5, 6), nil)
	f.courses.On("ListQuizItems", mock.Anything, "course-1").Return(items(1, 2, 3, 4, 5, 6), nil)
	f.progress.On("ListCompletedStageItems", mock.Anything, "user-1", "course-1").Return(items(1, 2, 3), nil)
	f.progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").Return(items(1, 2), nil)

	p, err := f.svc.GetCourseProgress(ctx, "user-1", "budgeting-basics")
	require.NoError(t, err)
	assert.Equal(t, 42, p.Progress)
	assert.Equal(t, 3, p.CompletedStages)
	assert.Equal(t, 2, p.CompletedQuizzes)
	assert.Equal(t, 2, p.CompletedCount)
	require.Len(t, p.StageProgress, 6)
	assert.Equal(t, domain.StageCompleted, p.StageProgress[0].Status)
	assert.Equal(t, domain.StageLessonDone, p.StageProgress[2].Status)
	assert.Equal(t, domain.StageNotStarted, p.StageProgress[5].Status)
	f.courses.AssertExpectations(t)
	f.progress.AssertExpectations(t)
}

func TestProgressService_GetCourseProgress_CourseNotFound(t *testing.T) {
	f := newProgressFixture(false)
	f.courses.On("GetCourseBySlug", mock.Anything, "missing").Return(nil, nil)

	_, err := f.svc.GetCourseProgress(context.Background(), "user-1", "missing")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeCourseNotFound, de.Code)
}

func TestProgressService_GetCourseProgress_StoreFailure(t *testing.T) {
	f := newProgressFixture(false)
	f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("ListStageItems", mock.Anything, "course-1").Return(nil, errors.New("connection reset"))
	f.courses.On("ListQuizItems", mock.Anything, "course-1").Return(items(1), nil).Maybe()
	f.progress.On("ListCompletedStageItems", mock.Anything, "user-1", "course-1").Return(items(), nil).Maybe()
	f.progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").Return(items(), nil).Maybe()

	_, err := f.svc.GetCourseProgress(context.Background(), "user-1", "budgeting-basics")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodePersistence, de.Code)
}

func TestProgressService_GetCourseProgress_ReadsThroughCache(t *testing.T) {
	genKey := cache.ProgressGenerationKey("user-1")
	key := cache.CourseProgressKey("user-1", "course-1", "0")
	index := cache.CourseProgressIndexKey("user-1")

	t.Run("hit", func(t *testing.T) {
		f := newProgressFixture(true)
		cached, _ := json.Marshal(domain.CourseProgress{CourseID: "course-1", Progress: 75})
		f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
		f.cache.On("Get", mock.Anything, genKey).Return("", domain.ErrCacheMiss)
		f.cache.On("Get", mock.Anything, key).Return(string(cached), nil)

		p, err := f.svc.GetCourseProgress(context.Background(), "user-1", "budgeting-basics")
		require.NoError(t, err)
		assert.Equal(t, 75, p.Progress)
		f.courses.AssertNotCalled(t, "ListStageItems", mock.Anything, mock.Anything)
	})

	t.Run("miss populates entry and index", func(t *testing.T) {
		f := newProgressFixture(true)
		f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
		f.cache.On("Get", mock.Anything, genKey).Return("", domain.ErrCacheMiss)
		f.cache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
		f.courses.On("ListStageItems", mock.Anything, "course-1").Return(items(1, 2), nil)
		f.courses.On("ListQuizItems", mock.Anything, "course-1").Return(items(1, 2), nil)
		f.progress.On("ListCompletedStageItems", mock.Anything, "user-1", "course-1").Return(items(1), nil)
		f.progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").Return(items(), nil)
		f.cache.On("Set", mock.Anything, key, mock.AnythingOfType("string"), time.Minute).Return(nil)
		f.cache.On("HSet", mock.Anything, index, "course-1", key).Return(nil)
		f.cache.On("Expire", mock.Anything, index, time.Minute).Return(nil)

		p, err := f.svc.GetCourseProgress(context.Background(), "user-1", "budgeting-basics")
		require.NoError(t, err)
		assert.Equal(t, 25, p.Progress)
		f.cache.AssertExpectations(t)
	})

	t.Run("cache outage does not fail the read", func(t *testing.T) {
		f := newProgressFixture(true)
		f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
		f.cache.On("Get", mock.Anything, genKey).Return("", errors.New("dial tcp: refused"))
		f.courses.On("ListStageItems", mock.Anything, "course-1").Return(items(), nil)
		f.courses.On("ListQuizItems", mock.Anything, "course-1").Return(items(), nil)
		f.progress.On("ListCompletedStageItems", mock.Anything, "user-1", "course-1").Return(items(), nil)
		f.progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").Return(items(), nil)

		p, err := f.svc.GetCourseProgress(context.Background(), "user-1", "budgeting-basics")
		require.NoError(t, err)
		assert.Equal(t, 0, p.Progress)
		f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProgressService_GetAllCoursesProgress(t *testing.T) {
	f := newProgressFixture(false)
	courses := []*domain.Course{
		{ID: "course-1", Slug: "budgeting-basics"},
		{ID: "course-2", Slug: "investing-101"},
		{ID: "course-3", Slug: "empty"},
	}
	f.courses.On("ListCourses", mock.Anything).Return(courses, nil)
	f.courses.On("CountItemsByCourse", mock.Anything).Return(
		map[string]int{"course-1": 6, "course-2": 2},
		map[string]int{"course-1": 6, "course-2": 2}, nil)
	f.progress.On("CountCompletedByCourse", mock.Anything, "user-1").Return(
		map[string]int{"course-1": 3, "course-2": 2},
		map[string]int{"course-1": 2, "course-2": 2}, nil)

	got, err := f.svc.GetAllCoursesProgress(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 42, got[0].Progress)
	assert.False(t, got[0].Completed)
	assert.Equal(t, 100, got[1].Progress)
	assert.True(t, got[1].Completed)
	assert.Equal(t, 0, got[2].Progress)
}

func TestProgressService_RecordQuiz_MarksStageInSameTransaction(t *testing.T) {
	f := newProgressFixture(true)
	ctx := context.Background()
	quiz := testQuiz()
	stored := &domain.QuizAttempt{UserID: "user-1", QuizID: "quiz-1", Score: 50, BestScore: 80, AttemptsCount: 3}

	f.tx.On("WithTransaction", ctx).Return()
	f.progress.On("UpsertQuizAttempt", ctx, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.UserID == "user-1" && a.QuizID == "quiz-1" && a.CourseID == "course-1" && a.Score == 50 && a.TimeTaken == 7
	})).Return(stored, nil)
	f.courses.On("GetStage", ctx, "course-1", 1).Return(testStage(1), nil)
	f.progress.On("InsertStageCompletion", ctx, mock.MatchedBy(func(c *domain.StageCompletion) bool {
		return c.LearningStageID == "stage-1" && c.UserID == "user-1"
	})).Return(false, nil)
	index := cache.CourseProgressIndexKey("user-1")
	f.cache.On("Set", ctx, cache.ProgressGenerationKey("user-1"), mock.AnythingOfType("string"), time.Duration(0)).Return(nil)
	f.cache.On("HGetAll", ctx, index).Return(map[string]string{"course-1": "k1"}, nil)
	f.cache.On("Delete", ctx, []string{"k1", index}).Return(nil)

	attempt, err := f.svc.RecordQuiz(ctx, "user-1", quiz, 50, 7)
	require.NoError(t, err)
	assert.Equal(t, 80, attempt.BestScore)
	assert.Equal(t, 3, attempt.AttemptsCount)
	f.tx.AssertExpectations(t)
	f.progress.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestProgressService_RecordQuiz_RejectsOutOfRangeScore(t *testing.T) {
	f := newProgressFixture(false)
	f.tx.On("WithTransaction", mock.Anything).Return()

	_, err := f.svc.RecordQuiz(context.Background(), "user-1", testQuiz(), 101, 5)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, domain.CodeOutOfRange, verrs[0].Code)
	f.progress.AssertNotCalled(t, "UpsertQuizAttempt", mock.Anything, mock.Anything)
}

func TestProgressService_SaveQuizProgress_QuizNotFound(t *testing.T) {
	f := newProgressFixture(false)
	f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("GetQuiz", mock.Anything, "course-1", 9).Return(nil, nil)

	_, err := f.svc.SaveQuizProgress(context.Background(), domain.QuizSubmission{
		UserID: "user-1", CourseSlug: "budgeting-basics", OrderIndex: 9, Score: 80,
	})

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeQuizNotFound, de.Code)
}

func TestProgressService_MarkStageComplete_Idempotent(t *testing.T) {
	f := newProgressFixture(false)
	ctx := context.Background()
	first := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	f.courses.On("GetCourseBySlug", ctx, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("GetStage", ctx, "course-1", 2).Return(testStage(2), nil)
	f.progress.On("InsertStageCompletion", ctx, mock.Anything).Return(true, nil).Once()
	f.progress.On("InsertStageCompletion", ctx, mock.Anything).Return(false, nil).Once()
	f.progress.On("GetStageCompletion", ctx, "user-1", "stage-2").Return(&domain.StageCompletion{CompletedAt: first}, nil)

	for i := 0; i < 2; i++ {
		resp, err := f.svc.MarkStageComplete(ctx, "user-1", "budgeting-basics", 2)
		require.NoError(t, err)
		assert.True(t, resp.Completed)
		assert.Equal(t, first, *resp.CompletedAt)
	}
	f.progress.AssertNumberOfCalls(t, "InsertStageCompletion", 2)
}

func TestProgressService_CheckStageCompletion(t *testing.T) {
	f := newProgressFixture(false)
	f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("GetStage", mock.Anything, "course-1", 1).Return(testStage(1), nil)
	f.courses.On("GetStage", mock.Anything, "course-1", 7).Return(nil, nil)
	f.progress.On("GetStageCompletion", mock.Anything, "user-1", "stage-1").Return(nil, nil)

	resp, err := f.svc.CheckStageCompletion(context.Background(), "user-1", "budgeting-basics", 1)
	require.NoError(t, err)
	assert.False(t, resp.Completed)
	assert.Nil(t, resp.CompletedAt)

	_, err = f.svc.CheckStageCompletion(context.Background(), "user-1", "budgeting-basics", 7)
	assert.True(t, domain.IsNotFound(err))
}

func TestProgressService_GetQuizAttempt(t *testing.T) {
	f := newProgressFixture(false)
	ctx := context.Background()
	f.courses.On("GetCourseBySlug", mock.Anything, "budgeting-basics").Return(testCourse(), nil)
	f.courses.On("GetQuiz", mock.Anything, "course-1", 1).Return(testQuiz(), nil)
	f.courses.On("GetQuiz", mock.Anything, "course-1", 9).Return(nil, nil)

	t.Run("attempted", func(t *testing.T) {
		at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		stored := domain.FirstAttempt("user-1", "quiz-1", "course-1", 60, 3, at).Next(80, 4, at).Next(50, 5, at)
		f.progress.On("GetQuizAttempt", mock.Anything, "user-1", "quiz-1").Return(&stored, nil).Once()

		resp, err := f.svc.GetQuizAttempt(ctx, "user-1", "budgeting-basics", 1)
		require.NoError(t, err)
		assert.True(t, resp.Attempted)
		require.NotNil(t, resp.Attempt)
		assert.Equal(t, 50, resp.Attempt.Score)
		assert.Equal(t, 80, resp.Attempt.BestScore)
		assert.Equal(t, 3, resp.Attempt.AttemptsCount)
	})

	t.Run("never attempted", func(t *testing.T) {
		f.progress.On("GetQuizAttempt", mock.Anything, "user-2", "quiz-1").Return(nil, nil).Once()
		resp, err := f.svc.GetQuizAttempt(ctx, "user-2", "budgeting-basics", 1)
		require.NoError(t, err)
		assert.False(t, resp.Attempted)
		assert.Nil(t, resp.Attempt)
	})

	t.Run("store failure", func(t *testing.T) {
		f.progress.On("GetQuizAttempt", mock.Anything, "user-3", "quiz-1").Return(nil, errors.New("conn reset")).Once()
		_, err := f.svc.GetQuizAttempt(ctx, "user-3", "budgeting-basics", 1)
		var de *domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.CodePersistence, de.Code)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := f.svc.GetQuizAttempt(ctx, "user-1", "budgeting-basics", 9)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestProgressService_GetUserStats(t *testing.T) {
	f := newProgressFixture(false)
	f.courses.On("ListCourses", mock.Anything).Return([]*domain.Course{{ID: "course-1"}, {ID: "course-2"}}, nil)
	f.courses.On("CountItemsByCourse", mock.Anything).Return(
		map[string]int{"course-1": 2, "course-2": 3},
		map[string]int{"course-1": 2, "course-2": 3}, nil)
	f.progress.On("CountCompletedByCourse", mock.Anything, "user-1").Return(
		map[string]int{"course-1": 2, "course-2": 1},
		map[string]int{"course-1": 2}, nil)
	f.progress.On("ListLatestScores", mock.Anything, "user-1").Return([]int{100, 75, 92}, nil)

	stats, err := f.svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, 1, stats.CompletedCourses)
	assert.Equal(t, 5, stats.TotalStages)
	assert.Equal(t, 3, stats.CompletedStages)
	assert.Equal(t, 2, stats.CompletedQuizzes)
	assert.Equal(t, 89, stats.AverageScore)
}

func TestProgressService_GetCourseProgress_WriteDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	courses := new(MockCourseRepository)
	progress := new(MockProgressRepository)
	pc := NewProgressCache(newMemoryCache(), time.Minute)
	svc := NewProgressService(courses, progress, new(MockTransactionManager), NewAttemptRecorder(progress), pc)

	courses.On("GetCourseBySlug", ctx, "budgeting-basics").Return(testCourse(), nil)
	courses.On("ListStageItems", mock.Anything, "course-1").Return(items(1, 2), nil)
	courses.On("ListQuizItems", mock.Anything, "course-1").Return(items(1, 2), nil)
	progress.On("ListCompletedStageItems", mock.Anything, "user-1", "course-1").Return(items(1), nil)
	// the first read sees no quizzes, then a submit commits and invalidates
	progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").
		Run(func(mock.Arguments) { svc.InvalidateUser(ctx, "user-1") }).
		Return(items(), nil).Once()
	progress.On("ListCompletedQuizItems", mock.Anything, "user-1", "course-1").Return(items(1), nil)

	first, err := svc.GetCourseProgress(ctx, "user-1", "budgeting-basics")
	require.NoError(t, err)
	assert.Equal(t, 25, first.Progress)

	second, err := svc.GetCourseProgress(ctx, "user-1", "budgeting-basics")
	require.NoError(t, err)
	assert.Equal(t, 50, second.Progress)
	progress.AssertNumberOfCalls(t, "ListCompletedQuizItems", 2)
}
