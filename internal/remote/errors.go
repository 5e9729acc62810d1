package remote

import (
	"errors"
	"fmt"
	"net/http"
)

const maxErrorBody = 512

// ErrUnauthorized matches an APIError whose status says the credentials were rejected.
var ErrUnauthorized = errors.New("credentials rejected")

// APIError is a non-2xx reply from the service.
type APIError struct {
	Operation  Operation
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Operation, e.StatusCode)
}

// Unauthorized reports whether the credentials were rejected.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Is matches ErrUnauthorized for 401 and 403 replies.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Unauthorized()
}

// NewAPIError creates a new API error, truncating long bodies
func NewAPIError(op Operation, status int, body []byte) *APIError {
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &APIError{
		Operation:  op,
		StatusCode: status,
		Body:       text,
	}
}
