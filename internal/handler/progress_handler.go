package handler

import (
	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/middleware"
	"finlearn/internal/service"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler exposes course progress and completion writes.
type ProgressHandler struct {
	service   service.ProgressService
	validator *validation.Validator
}

func NewProgressHandler(service service.ProgressService, v *validation.Validator) *ProgressHandler {
	return &ProgressHandler{service: service, validator: v}
}

// GetCourseProgress godoc
// @Summary Progress in one course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.APIResponse{data=domain.CourseProgress}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/progress [get]
func (h *ProgressHandler) GetCourseProgress(c *fiber.Ctx) error {
	progress, err := h.service.GetCourseProgress(c.UserContext(), middleware.UserID(c), middleware.Slug(c))
	if err != nil {
		return err
	}
	return ok(c, progress)
}

// GetAllProgress godoc
// @Summary Progress in every course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]domain.CourseProgressSummary}
// @Router /progress [get]
func (h *ProgressHandler) GetAllProgress(c *fiber.Ctx) error {
	progress, err := h.service.GetAllCoursesProgress(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, progress)
}

// SaveQuizProgress godoc
// @Summary Record a quiz score
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveQuizProgressRequest true "Score"
// @Success 200 {object} dto.APIResponse{data=dto.AttemptResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /progress/quiz [post]
func (h *ProgressHandler) SaveQuizProgress(c *fiber.Ctx) error {
	var req dto.SaveQuizProgressRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateSlug(req.CourseSlug); len(errs) > 0 {
		return errs
	}
	attempt, err := h.service.SaveQuizProgress(c.UserContext(), domain.QuizSubmission{
		UserID:     middleware.UserID(c),
		CourseSlug: req.CourseSlug,
		OrderIndex: req.OrderIndex,
		Score:      req.Score,
		TimeTaken:  req.TimeTaken,
	})
	if err != nil {
		return err
	}
	return ok(c, dto.NewAttemptResponse(attempt))
}

// MarkStageComplete godoc
// @Summary Mark a lesson complete
// @Description Idempotent; the first completion time is kept
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Success 200 {object} dto.APIResponse{data=dto.StageCompletionResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order}/complete [post]
func (h *ProgressHandler) MarkStageComplete(c *fiber.Ctx) error {
	resp, err := h.service.MarkStageComplete(c.UserContext(), middleware.UserID(c), middleware.Slug(c), middleware.StageOrder(c))
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// CheckStageCompletion godoc
// @Summary Whether a lesson is complete
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Success 200 {object} dto.APIResponse{data=dto.StageCompletionResponse}
// @Router /courses/{slug}/stages/{order}/completion [get]
func (h *ProgressHandler) CheckStageCompletion(c *fiber.Ctx) error {
	resp, err := h.service.CheckStageCompletion(c.UserContext(), middleware.UserID(c), middleware.Slug(c), middleware.StageOrder(c))
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// GetQuizAttempt godoc
// @Summary The caller's stored attempt record for a quiz
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Success 200 {object} dto.APIResponse{data=dto.QuizAttemptStatusResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order}/quiz/attempt [get]
func (h *ProgressHandler) GetQuizAttempt(c *fiber.Ctx) error {
	resp, err := h.service.GetQuizAttempt(c.UserContext(), middleware.UserID(c), middleware.Slug(c), middleware.StageOrder(c))
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// GetUserStats godoc
// @Summary Account-level learning statistics
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=domain.UserStats}
// @Router /users/me/stats [get]
func (h *ProgressHandler) GetUserStats(c *fiber.Ctx) error {
	stats, err := h.service.GetUserStats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, stats)
}
