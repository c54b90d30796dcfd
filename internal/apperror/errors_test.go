package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Field: "price", Message: "must be >= 0"}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get plan: %w", ErrNotFound), http.StatusNotFound},
		{"read only", ErrReadOnly, http.StatusForbidden},
		{"rest rejection", &RestError{StatusCode: http.StatusConflict, Body: "dup"}, http.StatusConflict},
		{"rest upstream auth", &RestError{StatusCode: http.StatusUnauthorized, Body: "bad key"}, http.StatusBadGateway},
		{"connection", &ConnectionError{Op: "connect", Err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"network", &NetworkError{URL: "http://x", Err: errors.New("timeout")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestRestError_IsInputRejection(t *testing.T) {
	assert.True(t, (&RestError{StatusCode: 400}).IsInputRejection())
	assert.True(t, (&RestError{StatusCode: 422}).IsInputRejection())
	assert.False(t, (&RestError{StatusCode: 401}).IsInputRejection())
	assert.False(t, (&RestError{StatusCode: 503}).IsInputRejection())
}

func TestNotConfiguredError_ListsVars(t *testing.T) {
	err := &NotConfiguredError{Vars: []string{"DATABASE_URL", "REST_URL"}}
	assert.Equal(t, "missing required configuration: DATABASE_URL, REST_URL", err.Error())
}
