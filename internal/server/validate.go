package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"atsmatch/internal/analysis"
	atsErrors "atsmatch/internal/errors"
)

// newValidator builds the request validator. Field errors report JSON names.
func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("profile", func(fl validator.FieldLevel) bool {
		_, ok := analysis.ParseProfile(fl.Field().String())
		return ok
	}); err != nil {
		return nil, fmt.Errorf("failed to register profile validator: %w", err)
	}
	return v, nil
}

func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, "invalid request", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, strings.Join(msgs, "; "), err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		if s, ok := fe.Value().(string); ok {
			return fmt.Sprintf("%s is too long (%d characters, max %s)", fe.Field(), utf8.RuneCountInString(s), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "profile":
		return fmt.Sprintf("%s must be 'extraction' or 'scoring'", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
