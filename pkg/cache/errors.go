package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by [GetJSON] when the key is absent, expired,
	// or holds data that does not decode.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackend wraps failures of a remote cache backend.
	ErrBackend = errors.New("cache backend error")
)

// GetJSON reads key from c and decodes it into v. A missing or undecodable
// entry reports ErrCacheMiss; backend failures are returned as is.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
