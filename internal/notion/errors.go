package notion

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the Notion API. Body holds the
// upstream error text for logging; it must never be forwarded to clients.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: upstream returned %d", e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
