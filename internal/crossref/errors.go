package crossref

import (
	"errors"
	"fmt"
)

// Common errors returned by the registry client.
var (
	// ErrNetworkError indicates a connectivity problem with the registry.
	ErrNetworkError = errors.New("network error communicating with registry")

	// ErrInvalidResponse indicates an unparsable registry payload.
	ErrInvalidResponse = errors.New("invalid response from registry")
)

// APIError represents a non-success HTTP response from the registry.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry API error (status %d): %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates an unknown resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRateLimited returns true if the error indicates registry throttling.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
