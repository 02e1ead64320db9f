package handler

import (
	"finlearn/internal/middleware"
	"finlearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CourseHandler serves course content.
type CourseHandler struct {
	service service.CourseService
}

func NewCourseHandler(service service.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// ListCourses godoc
// @Summary List courses
// @Description Returns every published course
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Failure 503 {object} dto.APIResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, courses)
}

// GetCourse godoc
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug} [get]
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.service.GetCourse(c.UserContext(), middleware.Slug(c))
	if err != nil {
		return err
	}
	return ok(c, course)
}

// ListStages godoc
// @Summary List stages of a course
// @Description Stages with the caller's lesson and quiz completion
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.APIResponse{data=[]dto.StageResponse}
// @Failure 401 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages [get]
func (h *CourseHandler) ListStages(c *fiber.Ctx) error {
	stages, err := h.service.ListStages(c.UserContext(), middleware.UserID(c), middleware.Slug(c))
	if err != nil {
		return err
	}
	return ok(c, stages)
}

// GetStage godoc
// @Summary Get one stage with its lesson content
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Success 200 {object} dto.APIResponse{data=dto.StageResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order} [get]
func (h *CourseHandler) GetStage(c *fiber.Ctx) error {
	stage, err := h.service.GetStage(c.UserContext(), middleware.UserID(c), middleware.Slug(c), middleware.StageOrder(c))
	if err != nil {
		return err
	}
	return ok(c, stage)
}

// GetQuiz godoc
// @Summary Get the quiz of a stage
// @Description Answer keys are never included
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param order path int true "Stage order index"
// @Success 200 {object} dto.APIResponse{data=dto.QuizResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /courses/{slug}/stages/{order}/quiz [get]
func (h *CourseHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.UserContext(), middleware.Slug(c), middleware.StageOrder(c))
	if err != nil {
		return err
	}
	return ok(c, quiz)
}
