package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/pipegraph/pkg/httputil"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

// Client provides shared JSON-over-HTTP functionality for the service
// clients under this package. It handles retries, default headers and
// observability hooks.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry sets the number of attempts and the initial backoff delay.
// attempts <= 1 disables retries.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a Client with the given default headers. Headers are
// applied to all requests; pass nil for none.
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:     NewHTTPClient(httpTimeout),
		headers:  headers,
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// PostJSON encodes in as the request body, POSTs it and decodes the JSON
// response into out. out may be nil to discard the body.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		rc, err := c.doRequest(ctx, method, url, body)
		if err != nil {
			return err
		}
		defer rc.Close()
		if out == nil {
			_, _ = io.Copy(io.Discard, rc)
			return nil
		}
		if err := json.NewDecoder(rc).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrBadResponse, err)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, method, url string, body []byte) (io.ReadCloser, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrBadResponse, code)
	}
}
