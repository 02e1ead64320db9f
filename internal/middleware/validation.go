package middleware

import (
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedSlugKey  = "validated_slug"
	ValidatedOrderKey = "validated_order"
)

// ValidationMiddleware checks path parameters before handlers run.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	if v == nil {
		v = validation.NewValidator()
	}
	return &ValidationMiddleware{validator: v}
}

// ValidateCourseSlug validates the :slug path parameter.
func (vm *ValidationMiddleware) ValidateCourseSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if errs := vm.validator.ValidateSlug(slug); len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedSlugKey, slug)
		return c.Next()
	}
}

// ValidateStageOrder validates the :order path parameter.
func (vm *ValidationMiddleware) ValidateStageOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, errs := vm.validator.ParseOrderIndex(c.Params("order"))
		if len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedOrderKey, order)
		return c.Next()
	}
}

func Slug(c *fiber.Ctx) string {
	s, _ := c.Locals(ValidatedSlugKey).(string)
	return s
}

func StageOrder(c *fiber.Ctx) int {
	n, _ := c.Locals(ValidatedOrderKey).(int)
	return n
}
