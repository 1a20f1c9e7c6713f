package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/integrations"
)

// ErrCircuitOpen is returned while the breaker rejects calls after too many
// consecutive failures.
var ErrCircuitOpen = errors.New("remote analyzer circuit open")

// Options tunes the remote client. Zero values select the defaults.
type Options struct {
	Timeout     time.Duration // per-request timeout (default 10s)
	Attempts    int           // attempts per call including the first (default 2)
	MaxFailures uint32        // consecutive failures before the circuit opens (default 5)
	OpenTimeout time.Duration // time the circuit stays open before probing (default 30s)
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = 2
	}
	if o.MaxFailures == 0 {
		o.MaxFailures = 5
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = 30 * time.Second
	}
	return o
}

// Client calls a remote service implementing POST /pipelines/parse.
// It satisfies [analysis.Analyzer] and is safe for concurrent use.
type Client struct {
	*integrations.Client
	url     string
	breaker *gobreaker.CircuitBreaker
	logger  *log.Logger
}

var _ analysis.Analyzer = (*Client)(nil)

// New creates a client for the analysis endpoint at url, which must be the
// full endpoint URL (for example http://localhost:8000/pipelines/parse).
func New(url string, opts Options, logger *log.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		Client: integrations.NewClient(nil,
			integrations.WithHTTPClient(integrations.NewHTTPClient(opts.Timeout)),
			integrations.WithRetry(opts.Attempts, 100*time.Millisecond),
		),
		url:    url,
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "remote-analyzer",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Cancellation says nothing about the remote's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string { return c.url }

// State reports the breaker state ("closed", "half-open" or "open").
func (c *Client) State() string { return c.breaker.State().String() }

// Analyze posts s and decodes the remote result. Any transport error,
// non-2xx status, undecodable body or open circuit is returned as an error;
// [analysis.Runner] turns that into a local fallback.
func (c *Client) Analyze(ctx context.Context, s graph.Snapshot) (analysis.Result, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var res analysis.Result
		if err := c.PostJSON(ctx, c.url, s, &res); err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return analysis.Result{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return analysis.Result{}, fmt.Errorf("remote analysis %s: %w", c.url, err)
	}
	c.logger.Debug("remote analysis complete", "url", c.url)
	return out.(analysis.Result), nil
}
