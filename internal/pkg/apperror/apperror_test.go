package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("dish %s not found", "x"), http.StatusNotFound},
		{"bad request", BadRequest("query is required"), http.StatusBadRequest},
		{"conflict", Conflict("username taken"), http.StatusConflict},
		{"auth", Auth("invalid token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not your history"), http.StatusForbidden},
		{"database", Database(errors.New("conn reset"), "failed to save"), http.StatusInternalServerError},
		{"generic", Generic(errors.New("boom"), "unexpected"), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", Conflict("dup")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestAppError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("driver failure")
	err := Database(cause, "failed to create dish")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create dish: driver failure", err.Error())
	assert.True(t, IsKind(err, KindDatabase))
	assert.False(t, IsKind(err, KindConflict))
}
