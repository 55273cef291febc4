package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
)

// validate checks the `validate` tags on service inputs and reports field
// names by their JSON spelling.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// Validator exposes the shared instance so the HTTP layer can register it
// with echo.
func Validator() *validator.Validate { return validate }

// check validates in and returns a Validation error describing the first
// failing field.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apperr.Validation("invalid input")
	}
	return apperr.Validation(describe(ves[0]))
}

func describe(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", f, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", f, fe.Param())
	default:
		return f + " is invalid"
	}
}

// Validate is check for callers outside the package, such as request DTOs
// in the HTTP layer.
func Validate(in any) error { return check(in) }
