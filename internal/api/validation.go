package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single failed binding rule on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationResponse is the 400 body for requests that fail binding.
type ValidationResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// NewValidationResponse turns a gin binding error into a structured 400
// body. Non-validator errors (malformed JSON, wrong types) keep their
// original message and carry no field details.
func NewValidationResponse(err error) ValidationResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationResponse{Error: err.Error()}
	}

	resp := ValidationResponse{Error: "validation failed"}
	for _, fe := range verrs {
		resp.Details = append(resp.Details, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return resp
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
