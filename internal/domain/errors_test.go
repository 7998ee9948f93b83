package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrValidation, ErrInvalidArgument, ErrUnavailable}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestTypedErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		expected string
	}{
		{"not found with id", NewNotFoundError("delivery module", "colissimo"), ErrNotFound, `delivery module "colissimo" not found`},
		{"not found without id", NewNotFoundError("postage quote", ""), ErrNotFound, "postage quote not found"},
		{"conflict", NewConflictError("delivery module", "already registered"), ErrConflict, "delivery module conflict: already registered"},
		{"validation with field", NewValidationError("cart", "cart has no items"), ErrValidation, "validation failed for cart: cart has no items"},
		{"validation without field", NewValidationError("", "no destination"), ErrValidation, "validation failed: no destination"},
		{"invalid argument localized", NewInvalidArgumentError("deliveryMode", "drone", "bad mode"), ErrInvalidArgument, "bad mode"},
		{"invalid argument fallback", NewInvalidArgumentError("deliveryMode", "drone", ""), ErrInvalidArgument, "invalid value drone for deliveryMode"},
		{"unavailable with reason", NewUnavailableError("carrier-api", "timeout"), ErrUnavailable, "carrier-api is unavailable: timeout"},
		{"unavailable without reason", NewUnavailableError("redis", ""), ErrUnavailable, "redis is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestInvalidArgumentError_Fields(t *testing.T) {
	err := fmt.Errorf("set mode: %w", NewInvalidArgumentError("deliveryMode", "drone", "nope"))

	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "deliveryMode", invalid.Argument)
	assert.Equal(t, "drone", invalid.Value)
	assert.Equal(t, "nope", invalid.Message)
}

func TestValidationError_WithValue(t *testing.T) {
	err := NewValidationErrorWithValue("country", "unsupported", "ZZ")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "ZZ", validation.Value)
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound typed", NewNotFoundError("quote", "1"), IsNotFound, true},
		{"IsNotFound wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound other", ErrConflict, IsNotFound, false},
		{"IsNotFound nil", nil, IsNotFound, false},

		{"IsConflict typed", NewConflictError("module", "dup"), IsConflict, true},
		{"IsConflict other", ErrNotFound, IsConflict, false},

		{"IsValidation typed", NewValidationError("cart", "empty"), IsValidation, true},
		{"IsValidation other", ErrInvalidArgument, IsValidation, false},

		{"IsInvalidArgument typed", NewInvalidArgumentError("mode", "x", ""), IsInvalidArgument, true},
		{"IsInvalidArgument wrapped", fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrInvalidArgument)), IsInvalidArgument, true},
		{"IsInvalidArgument other", ErrValidation, IsInvalidArgument, false},

		{"IsUnavailable typed", NewUnavailableError("kafka", ""), IsUnavailable, true},
		{"IsUnavailable nil", nil, IsUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}
