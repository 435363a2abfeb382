package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("amount", "must be a number")

	assert.Equal(t, "validation failed: amount: must be a number", err.Error())
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsPrecondition(err))
}

func TestPreconditionError(t *testing.T) {
	err := NewPreconditionError("complaint has no author")

	assert.Equal(t, "precondition failed: complaint has no author", err.Error())
	assert.True(t, IsPrecondition(err))
	assert.False(t, IsValidation(err))
}

func TestRemoteErrorUnwraps(t *testing.T) {
	err := NewRemoteError("append response", ErrNotFound)

	assert.Equal(t, "append response: not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsRemote(err))

	bare := NewRemoteError("push", nil)
	assert.Equal(t, "push", bare.Error())
}
