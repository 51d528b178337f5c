package api

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitForm struct {
	CreatorID   int    `validate:"required"`
	AmountCents int64  `validate:"required"`
	Source      string `validate:"omitempty,oneof=direct campaign"`
}

func TestNewValidationResponse_FieldErrors(t *testing.T) {
	err := validator.New().Struct(submitForm{Source: "carrier-pigeon"})
	require.Error(t, err)

	resp := NewValidationResponse(err)

	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Details, 3)
	assert.Equal(t, "CreatorID is required", resp.Details[0].Message)
	assert.Equal(t, "AmountCents is required", resp.Details[1].Message)
	assert.Equal(t, "Source must be one of direct campaign", resp.Details[2].Message)
}

func TestNewValidationResponse_NonValidatorError(t *testing.T) {
	resp := NewValidationResponse(assert.AnError)

	assert.Equal(t, assert.AnError.Error(), resp.Error)
	assert.Empty(t, resp.Details)
}
