package handler

import (
	"finlearn/internal/dto"
	"finlearn/internal/middleware"
	"finlearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles server-side sign-out. Sign-in happens at the identity
// provider.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the bearer token until it expires
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 401 {object} dto.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.Token(c), middleware.Claims(c)); err != nil {
		return err
	}
	return ok(c, dto.MessageResponse{Message: "Signed out"})
}
