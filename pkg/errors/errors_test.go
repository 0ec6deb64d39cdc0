package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrNotFound, "session not found")
	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrValidation))
	assert.Equal(t, "session not found", err.Error())
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("render failed")
	err := Wrap(cause, ErrInternal.Code, "export failed")
	assert.True(t, stdErrors.Is(err, cause))
	assert.True(t, stdErrors.Is(err, ErrInternal))
	assert.Equal(t, "export failed: render failed", err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrReference, "student not found")
	wrapped := fmt.Errorf("mark: %w", typed)
	require.Same(t, typed, FromError(wrapped))

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
}
