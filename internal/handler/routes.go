package handler

import (
	"finlearn/internal/middleware"
	"finlearn/internal/service"
	"finlearn/internal/session"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Course   *CourseHandler
	Quiz     *QuizHandler
	Progress *ProgressHandler
	User     *UserHandler
	Auth     *AuthHandler
	Health   *HealthHandler
}

// SetupRoutes mounts the API under /api. Only the course catalogue and the
// health check are public.
func SetupRoutes(app *fiber.App, h Handlers, authService service.AuthService, hub *session.Hub, v *validation.Validator) {
	vm := middleware.NewValidationMiddleware(v)
	protected := middleware.Protected(authService, hub)
	slug := vm.ValidateCourseSlug()
	order := vm.ValidateStageOrder()

	api := app.Group("/api")
	api.Get("/health", h.Health.Health)

	api.Get("/courses", h.Course.ListCourses)
	api.Get("/courses/:slug", slug, h.Course.GetCourse)
	api.Get("/courses/:slug/stages", protected, slug, h.Course.ListStages)
	api.Get("/courses/:slug/progress", protected, slug, h.Progress.GetCourseProgress)

	api.Get("/courses/:slug/stages/:order", protected, slug, order, h.Course.GetStage)
	api.Post("/courses/:slug/stages/:order/complete", protected, slug, order, h.Progress.MarkStageComplete)
	api.Get("/courses/:slug/stages/:order/completion", protected, slug, order, h.Progress.CheckStageCompletion)
	api.Get("/courses/:slug/stages/:order/quiz", protected, slug, order, h.Course.GetQuiz)
	api.Post("/courses/:slug/stages/:order/quiz/check", protected, slug, order, h.Quiz.CheckAnswer)
	api.Post("/courses/:slug/stages/:order/quiz/submit", protected, slug, order, h.Quiz.SubmitQuiz)
	api.Get("/courses/:slug/stages/:order/quiz/attempt", protected, slug, order, h.Progress.GetQuizAttempt)

	api.Get("/progress", protected, h.Progress.GetAllProgress)
	api.Post("/progress/quiz", protected, h.Progress.SaveQuizProgress)
	api.Post("/auth/logout", protected, h.Auth.Logout)

	// No groups: group middleware matches by prefix and would cover /courses/:slug.
	me := "/users/me"
	api.Get(me+"/stats", protected, h.Progress.GetUserStats)
	api.Get(me+"/profile", protected, h.User.GetProfile)
	api.Put(me+"/profile", protected, h.User.UpdateProfile)
	api.Get(me+"/notifications", protected, h.User.GetNotifications)
	api.Get(me+"/preferences", protected, h.User.GetPreferences)
	api.Put(me+"/preferences", protected, h.User.UpdatePreferences)
	api.Get(me+"/avatar", protected, h.User.GetAvatar)
	api.Put(me+"/avatar", protected, h.User.UploadAvatar)
	api.Delete(me+"/avatar", protected, h.User.DeleteAvatar)
}
