package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for backend operations.
// These can be checked using errors.Is().
var (
	// ErrTransport is returned when a request never completed: dial failures,
	// timeouts, cancelled contexts, truncated bodies.
	ErrTransport = errors.New("api: transport failure")

	// ErrNotFound matches a StatusError whose status is 404.
	ErrNotFound = errors.New("api: not found")
)

// StatusError represents a non-success HTTP status returned by the backend.
// The body is kept verbatim for diagnostics.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Is reports whether the status error matches target.
// A 404 matches ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsStatus reports whether err carries a server-reported failure.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// transportError wraps a low-level failure with the operation name.
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
