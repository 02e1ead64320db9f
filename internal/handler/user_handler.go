package handler

import (
	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/logger"
	"finlearn/internal/middleware"
	"finlearn/internal/service"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler serves the caller's profile, avatar and notifications.
type UserHandler struct {
	profiles  service.ProfileService
	avatars   service.AvatarService
	validator *validation.Validator
}

func NewUserHandler(profiles service.ProfileService, avatars service.AvatarService, v *validation.Validator) *UserHandler {
	return &UserHandler{profiles: profiles, avatars: avatars, validator: v}
}

// GetProfile godoc
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Router /users/me/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	email := ""
	if claims := middleware.Claims(c); claims != nil {
		email = claims.Email
	}
	profile, err := h.profiles.GetProfile(c.UserContext(), middleware.UserID(c), email)
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// UpdateProfile godoc
// @Summary Update my profile
// @Description Returns the updated profile immediately; a failed save is reported through notifications
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 400 {object} dto.APIResponse
// @Router /users/me/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewValidationError("request body is not valid JSON")}
	}
	// the service trims before validating, so tags are checked there
	profile, err := h.profiles.UpdateProfile(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// GetNotifications godoc
// @Summary Drain my notification inbox
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]domain.Notification}
// @Router /users/me/notifications [get]
func (h *UserHandler) GetNotifications(c *fiber.Ctx) error {
	notes, err := h.profiles.GetNotifications(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, notes)
}

// GetPreferences godoc
// @Summary Get my preferences
// @Description Users without stored preferences get theme dark, language en and notifications on
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=domain.Preferences}
// @Router /users/me/preferences [get]
func (h *UserHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.profiles.GetPreferences(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, prefs)
}

// UpdatePreferences godoc
// @Summary Update my preferences
// @Description Changes language and notifications; other stored settings are kept
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} dto.APIResponse{data=domain.Preferences}
// @Failure 400 {object} dto.APIResponse
// @Router /users/me/preferences [put]
func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}
	prefs, err := h.profiles.UpdatePreferences(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return ok(c, prefs)
}

// GetAvatar godoc
// @Summary Get my avatar URL
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AvatarResponse}
// @Router /users/me/avatar [get]
func (h *UserHandler) GetAvatar(c *fiber.Ctx) error {
	url, err := h.avatars.GetAvatarURL(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, dto.AvatarResponse{URL: url})
}

// UploadAvatar godoc
// @Summary Upload my avatar
// @Description JPEG or PNG, at most 5 MiB
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=dto.AvatarResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /users/me/avatar [put]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	f, err := fh.Open()
	if err != nil {
		return domain.NewInternalError("Failed to read upload", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Get().Debug("Failed to close upload", zap.Error(cerr))
		}
	}()

	url, err := h.avatars.Upload(c.UserContext(), middleware.UserID(c), fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		return err
	}
	return ok(c, dto.AvatarResponse{URL: url})
}

// DeleteAvatar godoc
// @Summary Remove my avatar
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Router /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c *fiber.Ctx) error {
	if err := h.avatars.Delete(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return ok(c, dto.MessageResponse{Message: "Avatar removed"})
}
