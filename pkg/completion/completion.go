package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

// ErrEmptyPrompt is returned when the prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to [Completer].
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

// Cached wraps a Completer and memoizes responses per (model, prompt).
// Errors are never cached. Cache failures are ignored.
type Cached struct {
	inner Completer
	cache cache.Cache
	keyer cache.Keyer
	model string
	ttl   time.Duration
}

// NewCached wraps inner. model only namespaces the cache key. A nil keyer
// means [cache.DefaultKeyer]; ttl <= 0 means [cache.TTLCompletion].
func NewCached(inner Completer, c cache.Cache, keyer cache.Keyer, model string, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.TTLCompletion
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, model: model, ttl: ttl}
}

// Complete returns the cached response for prompt or asks the wrapped
// completer and stores its answer.
func (c *Cached) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	key := c.keyer.CompletionKey(c.model, prompt)
	hooks := observability.Cache()

	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, "completion")
		return string(data), nil
	}
	hooks.OnCacheMiss(ctx, "completion")

	text, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(text), c.ttl); err == nil {
		hooks.OnCacheSet(ctx, "completion", len(text))
	}
	return text, nil
}
