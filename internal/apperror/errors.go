package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrReadOnly is returned when a write is attempted with the anonymous REST key.
	ErrReadOnly = errors.New("client is read-only")
)

// ConnectionError means the primary datastore could not be reached.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RestError is an application-level rejection from the REST endpoint.
type RestError struct {
	StatusCode int
	Body       string
}

func (e *RestError) Error() string {
	return fmt.Sprintf("rest error %d: %s", e.StatusCode, e.Body)
}

// IsInputRejection reports whether the endpoint refused the payload itself,
// which another tier would refuse identically.
func (e *RestError) IsInputRejection() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// NetworkError is a transport failure talking to the REST endpoint
// (timeout, DNS, connection refused).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotConfiguredError lists required environment variables that are missing.
type NotConfiguredError struct {
	Vars []string
}

func (e *NotConfiguredError) Error() string {
	return "missing required configuration: " + strings.Join(e.Vars, ", ")
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// HTTPStatus maps an error from the data layer to the status code a write
// endpoint should answer with.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		rest       *RestError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrReadOnly):
		return http.StatusForbidden
	case errors.As(err, &rest):
		if rest.IsInputRejection() {
			return rest.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusServiceUnavailable
}
