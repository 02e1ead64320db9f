package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"finlearn/internal/domain"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validator checks request input before it reaches the services.
type Validator struct {
	structs *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structs: v}
}

// ValidateStruct applies the validate tags of a request DTO.
func (v *Validator) ValidateStruct(s interface{}) domain.ValidationErrors {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{domain.NewValidationError(err.Error())}
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max", "gte", "lte":
		min, max := 0, 100
		if fe.Tag() == "min" || fe.Tag() == "gte" {
			min, _ = strconv.Atoi(fe.Param())
		} else {
			max, _ = strconv.Atoi(fe.Param())
		}
		return domain.NewOutOfRangeError(field, fe.Value(), min, max)
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// ValidateSlug accepts lowercase words joined by single hyphens.
func (v *Validator) ValidateSlug(slug string) domain.ValidationErrors {
	if strings.TrimSpace(slug) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("slug")}
	}
	if len(slug) > 100 || !slugPattern.MatchString(slug) {
		return domain.ValidationErrors{domain.NewInvalidFormatError("slug", slug)}
	}
	return nil
}

// ParseOrderIndex parses a 1-based stage position from a path segment.
func (v *Validator) ParseOrderIndex(raw string) (int, domain.ValidationErrors) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("order", raw)}
	}
	if n < 1 || n > 1000 {
		return 0, domain.ValidationErrors{domain.NewOutOfRangeError("order", n, 1, 1000)}
	}
	return n, nil
}

// ValidateAnswers rejects submissions that name questions with empty ids.
func (v *Validator) ValidateAnswers(answers domain.Answers) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for id := range answers {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, domain.NewInvalidFormatError("answers", id))
		}
	}
	return errs
}
