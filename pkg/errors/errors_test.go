package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("row missing")
	err := NotFound("product", "42")
	err.Err = errors.Join(ErrNotFound, inner)

	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "product with id 42 not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, inner))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "app error carries its status", err: InvalidInput("bad"), expected: http.StatusBadRequest},
		{name: "not found sentinel", err: Wrap(ErrNotFound, "get product"), expected: http.StatusNotFound},
		{name: "conflict sentinel", err: Wrap(ErrConflict, "update stock"), expected: http.StatusConflict},
		{name: "unavailable sentinel", err: Wrap(ErrServiceUnavail, "ping"), expected: http.StatusServiceUnavailable},
		{name: "unknown error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestUnavailable_WrapsBoth(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable("catalog store unreachable", cause)

	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}
