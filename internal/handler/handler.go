package handler

import (
	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// bindJSON parses the request body into out and applies its validate tags.
func bindJSON(c *fiber.Ctx, v *validation.Validator, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ValidationErrors{domain.NewValidationError("request body is not valid JSON: " + err.Error())}
	}
	if errs := v.ValidateStruct(out); len(errs) > 0 {
		return errs
	}
	return nil
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(dto.OK(data))
}
