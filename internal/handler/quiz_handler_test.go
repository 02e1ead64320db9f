package handler_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finlearn/internal/domain"
	"finlearn/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizPath = "/api/courses/budgeting-basics/stages/1/quiz"

func TestQuizHandler_CheckAnswer(t *testing.T) {
	t.Run("Single and multiple answers decode", func(t *testing.T) {
		ts := newTestServer()
		var got []*dto.CheckAnswerRequest
		ts.quizzes.CheckAnswerFunc = func(ctx context.Context, slug string, orderIndex int, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
			got = append(got, req)
			return &dto.CheckAnswerResponse{QuestionID: req.QuestionID, Correct: true}, nil
		}

		for _, body := range []string{
			`{"question_id":"q1","answer":"b"}`,
			`{"question_id":"q2","answer":["a","c"]}`,
		} {
			req := authorize(httptest.NewRequest("POST", quizPath+"/check", strings.NewReader(body)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := ts.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}

		require.Len(t, got, 2)
		assert.False(t, got[0].Answer.IsMultiple())
		assert.Equal(t, "b", got[0].Answer.OptionID())
		assert.True(t, got[1].Answer.IsMultiple())
		assert.Equal(t, []string{"a", "c"}, got[1].Answer.OptionIDs())
	})

	t.Run("Missing question id", func(t *testing.T) {
		ts := newTestServer()
		req := authorize(httptest.NewRequest("POST", quizPath+"/check", strings.NewReader(`{"answer":"b"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown question", func(t *testing.T) {
		ts := newTestServer()
		ts.quizzes.CheckAnswerFunc = func(ctx context.Context, slug string, orderIndex int, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
			return nil, domain.NewNotFoundError("Question not found").WithContext("question_id", req.QuestionID)
		}
		req := authorize(httptest.NewRequest("POST", quizPath+"/check", strings.NewReader(`{"question_id":"q9","answer":"a"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestQuizHandler_SubmitQuiz(t *testing.T) {
	t.Run("Scores and records", func(t *testing.T) {
		ts := newTestServer()
		ts.quizzes.SubmitQuizFunc = func(ctx context.Context, userID, slug string, orderIndex int, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
			assert.Equal(t, testUserID, userID)
			assert.Equal(t, 1, orderIndex)
			assert.Equal(t, 4, req.TimeTaken)
			assert.Len(t, req.Answers, 2)
			return &dto.SubmitQuizResponse{
				Result:  domain.QuizResult{Score: 50, CorrectCount: 1, TotalQuestions: 2},
				Attempt: dto.AttemptResponse{Score: 50, BestScore: 80, AttemptsCount: 3, TimeTaken: 4, CompletedAt: time.Now()},
			}, nil
		}
		body := `{"answers":{"q1":"b","q2":["a"]},"time_taken":4}`
		req := authorize(httptest.NewRequest("POST", quizPath+"/submit", strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out dto.SubmitQuizResponse
		decode(t, resp, &out)
		assert.Equal(t, 50, out.Result.Score)
		assert.Equal(t, 80, out.Attempt.BestScore)
	})

	t.Run("Negative time taken", func(t *testing.T) {
		ts := newTestServer()
		req := authorize(httptest.NewRequest("POST", quizPath+"/submit", strings.NewReader(`{"answers":{},"time_taken":-1}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Answer of the wrong JSON type", func(t *testing.T) {
		ts := newTestServer()
		req := authorize(httptest.NewRequest("POST", quizPath+"/submit", strings.NewReader(`{"answers":{"q1":7}}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
