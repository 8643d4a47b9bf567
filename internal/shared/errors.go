package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrIdentityConflict = fmt.Errorf("another member is already signed in")

	// Transport and HTTP errors
	ErrTransport        = fmt.Errorf("transport failure")
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrUnauthorized     = fmt.Errorf("unauthorized")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrNotFound         = fmt.Errorf("not found")
	ErrServerError      = fmt.Errorf("server error")
	ErrMalformedPayload = fmt.Errorf("malformed payload")
	ErrCircuitOpen      = fmt.Errorf("backend temporarily unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// View lifecycle errors
	ErrUnmounted = fmt.Errorf("view unmounted")
)

// HTTPError is returned for every non-2xx backend response.
//
// It unwraps to [ErrAPIRequest] and to the status class sentinel, so callers can test with [errors.Is].
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) > 0 && len(e.Body) <= 256 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap exposes the sentinels matching the status code.
func (e *HTTPError) Unwrap() []error {
	errs := []error{ErrAPIRequest}
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		errs = append(errs, ErrUnauthorized)
	case e.StatusCode == http.StatusForbidden:
		errs = append(errs, ErrForbidden)
	case e.StatusCode == http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	case e.StatusCode >= 500:
		errs = append(errs, ErrServerError)
	}
	return errs
}

// IsAuthExpiry reports whether the status means the session token is no longer accepted.
func (e *HTTPError) IsAuthExpiry() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsAborted reports whether err comes from a cancelled request.
//
// Aborted requests mean "no result" and are not shown to the user.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// BindContext derives a context from ctx that is also cancelled when lifetime ends.
func BindContext(ctx, lifetime context.Context) (context.Context, context.CancelFunc) {
	bound, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(lifetime, cancel)
	return bound, func() {
		stop()
		cancel()
	}
}
