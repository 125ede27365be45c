package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewContentError("billing.json", nil)
		err.AddError("missing required field: entityRef")

		assert.Equal(t, "content error in billing.json: missing required field: entityRef", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.True(t, errors.Is(err, ErrInvalidRecord), "Should default to ErrInvalidRecord")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewContentError("payments.json", nil)
		err.AddError("entityRef must be an object")
		err.AddError("areaScores must be an array")

		assert.Equal(t,
			"content errors in payments.json: entityRef must be an object; areaScores must be an array",
			err.Error())
		assert.Len(t, err.Errors, 2)
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := NewContentError("orders.json", ErrMissingAreaScores)

		assert.Equal(t, "content error in orders.json: missing areaScores", err.Error())
		assert.True(t, err.HasErrors())
		assert.True(t, errors.Is(err, ErrMissingAreaScores))
		assert.False(t, errors.Is(err, ErrMissingEntityRef))
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewContentError("empty.json", nil)

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})
}

func TestCommonDomainErrors(t *testing.T) {
	// Test that common errors are defined and have expected messages
	tests := []struct {
		err     error
		message string
	}{
		{ErrNilRecord, "nil record"},
		{ErrMissingEntityRef, "missing entityRef"},
		{ErrMissingAreaScores, "missing areaScores"},
		{ErrInvalidRecord, "invalid record"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}

func TestErrorsAs(t *testing.T) {
	var err error = NewContentError("billing.json", ErrMissingEntityRef)

	var contentErr *ContentError
	assert.True(t, errors.As(err, &contentErr))
	assert.Equal(t, "billing.json", contentErr.Source)
}

func TestValidationResult(t *testing.T) {
	result := NewValidationResult()
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())

	result.AddWarning("entityRef.kind \"group\" is not a recognized kind")
	assert.True(t, result.Valid, "warnings never invalidate a record")

	result.AddError("missing required field: areaScores")
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors())
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Warnings, 1)
}
