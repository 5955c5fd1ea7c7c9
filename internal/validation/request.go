package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"xhubsell/internal/models"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed struct field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the `validate` tags on s. Failures are returned as a
// validation AppError whose message lists every failing field.
func ValidateStruct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	fields := FormatValidationErrors(err)
	if len(fields) == 0 {
		return models.NewValidationError(err.Error())
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Message)
	}
	return &models.AppError{
		Code:    models.CodeValidation,
		Reason:  "invalid_" + fields[0].Field,
		Message: strings.Join(parts, "; "),
		Err:     err,
	}
}

// FormatValidationErrors converts validator errors to field messages.
func FormatValidationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
