package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPError(t *testing.T) {
	tt := []struct {
		name     string
		status   int
		sentinel error
		expiry   bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, sentinel: ErrUnauthorized, expiry: true},
		{name: "forbidden", status: http.StatusForbidden, sentinel: ErrForbidden, expiry: true},
		{name: "not found", status: http.StatusNotFound, sentinel: ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, sentinel: ErrServerError},
		{name: "bad request", status: http.StatusBadRequest, sentinel: ErrAPIRequest},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: tc.status, Method: "GET", Path: "/x"})

			if !errors.Is(err, tc.sentinel) {
				t.Errorf("expected errors.Is(%v)", tc.sentinel)
			}
			if !errors.Is(err, ErrAPIRequest) {
				t.Error("expected every HTTP error to match ErrAPIRequest")
			}
			if got := StatusCode(err); got != tc.status {
				t.Errorf("StatusCode() = %d, want %d", got, tc.status)
			}

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatal("expected errors.As to find *HTTPError")
			}
			if httpErr.IsAuthExpiry() != tc.expiry {
				t.Errorf("IsAuthExpiry() = %v, want %v", httpErr.IsAuthExpiry(), tc.expiry)
			}
		})
	}

	t.Run("Error Message Includes Short Body", func(t *testing.T) {
		err := &HTTPError{StatusCode: 400, Method: "POST", Path: "/review", Body: []byte("rating required")}
		if err.Error() != "POST /review: status 400: rating required" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("StatusCode Without HTTPError", func(t *testing.T) {
		if StatusCode(errors.New("boom")) != 0 {
			t.Error("expected 0 for plain error")
		}
	})
}

func TestIsAborted(t *testing.T) {
	if !IsAborted(fmt.Errorf("request failed: %w", context.Canceled)) {
		t.Error("expected wrapped context.Canceled to be aborted")
	}
	if IsAborted(context.DeadlineExceeded) {
		t.Error("deadline exceeded is a failure, not an abort")
	}
	if IsAborted(nil) {
		t.Error("nil is not aborted")
	}
}
