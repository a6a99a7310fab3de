package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the backend, carrying the message the
// server put in the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the backend, which the
// session layer treats as an expired or revoked token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404. The backend answers 404 for an
// empty request list, which callers treat as "no entries" rather than failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// UserMessage returns the text worth showing to the user: the server's own
// message for API errors, a generic one for transport failures.
func UserMessage(err error) string {
	return UserMessageOr(err, "An error occurred")
}

// UserMessageOr is UserMessage with a caller-chosen fallback for transport
// failures.
func UserMessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return fallback
}
