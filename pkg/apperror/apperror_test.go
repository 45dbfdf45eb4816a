package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("db down")

	assert.Equal(t, Unauthorized, KindOf(NewUnauthorized("nope")))
	assert.Equal(t, Conflict, KindOf(fmt.Errorf("wrapped: %w", NewConflict("taken"))))
	assert.Equal(t, Internal, KindOf(cause))
	assert.Equal(t, Internal, KindOf(NewInternal("boom", cause)))
}

func TestIs(t *testing.T) {
	err := NewNotFound("user doesn't exist")

	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, Unauthorized))
	assert.False(t, Is(errors.New("plain"), NotFound))
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal("failed to load user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		BadRequest:   http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Internal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}
