package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesCodeAndMessage(t *testing.T) {
	base := NewError(http.StatusNotFound, "room not found")

	assert.ErrorIs(t, NewError(http.StatusNotFound, "room not found"), base)
	assert.NotErrorIs(t, NewError(http.StatusBadRequest, "room not found"), base)
	assert.NotErrorIs(t, errors.New("room not found"), base)
}

func TestWithDetails(t *testing.T) {
	base := NewError(http.StatusInternalServerError, "AIModel API error")
	wrapped := WithDetails(base, errors.New("quota exceeded"))

	assert.ErrorIs(t, wrapped, base)
	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "quota exceeded", e.Details)

	plain := errors.New("boom")
	assert.Equal(t, plain, WithDetails(plain, errors.New("cause")))
}
