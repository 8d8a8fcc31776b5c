package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrLoginFailed is returned when the backend rejects the credentials.
var ErrLoginFailed = errors.New("login failed")

// ErrEmptyResponse is returned when a 2xx response that should carry a
// result has no body.
var ErrEmptyResponse = errors.New("empty response body")

// HTTPError is a non-2xx response other than a 401 that triggered a refresh.
type HTTPError struct {
	StatusCode int
	Status     string
	Detail     string
}

func newHTTPError(resp *http.Response, detail string) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Detail:     detail,
	}
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("API request failed: %s", e.Status)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// *HTTPError.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
