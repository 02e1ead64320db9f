package handler

import (
	"finlearn/internal/dto"
	"finlearn/internal/middleware"
	"finlearn/internal/service"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles answer checks and quiz submissions.
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

func NewQuizHandler(service service.QuizService, v *validation.Validator) *QuizHandler {
	return &QuizHandler{service: service, validator: v}
}

// CheckAnswer godoc
// @Summary Check one answer
// @Description Per-question feedback while taking a quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Param request body dto.CheckAnswerRequest true "Answer"
// @Success 200 {object} dto.APIResponse{data=dto.CheckAnswerResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order}/quiz/check [post]
func (h *QuizHandler) CheckAnswer(c *fiber.Ctx) error {
	var req dto.CheckAnswerRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.service.CheckAnswer(c.UserContext(), middleware.Slug(c), middleware.StageOrder(c), &req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// SubmitQuiz godoc
// @Summary Finish a quiz
// @Description Scores the answers and records the attempt. Also used on timer expiry.
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Param request body dto.SubmitQuizRequest true "Answers"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitQuizResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order}/quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateAnswers(req.Answers); len(errs) > 0 {
		return errs
	}
	resp, err := h.service.SubmitQuiz(c.UserContext(), middleware.UserID(c), middleware.Slug(c), middleware.StageOrder(c), &req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}
