package basecamp

// file: internal/basecamp/errors.go

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel markers. Use errors.Is against these; the concrete error carries
// the request details.
var (
	// ErrTimeout marks a request that exceeded its deadline.
	ErrTimeout = errors.New("basecamp: request timed out")
	// ErrDecode marks a 2xx response whose body was not the expected JSON.
	ErrDecode = errors.New("basecamp: malformed response")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
	RetryAfter string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("basecamp: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from the service.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
