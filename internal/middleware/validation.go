package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/Gurusharan-Fintech/Finlense/internal/errors"
)

// validate is the shared validator instance; validator instances cache
// struct metadata, so a single instance is reused.
var validate = validator.New()

// ValidateStruct runs struct-tag validation and maps failures to an APIError.
// Returns nil when the value is valid.
func ValidateStruct(v interface{}) *apierrors.APIError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: validationMessage(fe),
		})
	}

	return apierrors.NewValidationErrors(fields)
}

// DecodeAndValidate decodes a JSON request body into v and validates it.
func DecodeAndValidate(r *http.Request, v interface{}) *apierrors.APIError {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	return ValidateStruct(v)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
