package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// 429 and 5xx responses). These are retried.
	ErrNetwork = errors.New("network error")

	// ErrBadResponse is returned for other non-2xx statuses and bodies that
	// do not decode. These are not retried.
	ErrBadResponse = errors.New("bad response")
)

// NewHTTPClient creates an HTTP client with the given overall timeout.
// A zero timeout uses the package default of 10 seconds.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &http.Client{Timeout: timeout}
}
