package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte(`{"is_dag":true}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `{"is_dag":true}` {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}

	_ = c.Set(ctx, "forever", []byte("v"), 0)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero TTL entry should not expire")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), time.Hour)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry present after Clear")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type result struct {
		N int `json:"n"`
	}
	var got result
	if err := GetJSON(ctx, c, "x", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON on missing key = %v, want ErrCacheMiss", err)
	}
	if err := SetJSON(ctx, c, "x", result{N: 4}, time.Hour); err != nil {
		t.Fatalf("SetJSON error: %v", err)
	}
	if err := GetJSON(ctx, c, "x", &got); err != nil || got.N != 4 {
		t.Errorf("GetJSON = %+v, %v", got, err)
	}

	_ = c.Set(ctx, "bad", []byte("not json"), time.Hour)
	if err := GetJSON(ctx, c, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON on corrupt entry = %v, want ErrCacheMiss", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	a, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	b, _ := HashJSON(map[string]int{"a": 1, "b": 2})
	if a != b {
		t.Error("HashJSON should not depend on map insertion order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.AnalysisKey("abc"); got != "analysis:abc" {
		t.Errorf("AnalysisKey = %q", got)
	}
	if k.CompletionKey("m", "hi") == k.CompletionKey("m", "hi!") {
		t.Error("different prompts should produce different completion keys")
	}
	c1 := k.CompletionKey("model-a", "hi")
	c2 := k.CompletionKey("model-b", "hi")
	if c1 == c2 {
		t.Error("different models should produce different completion keys")
	}
	if !strings.HasPrefix(c1, "completion:") {
		t.Errorf("CompletionKey = %q, want completion: prefix", c1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "team:")
	if got := scoped.AnalysisKey("abc"); got != "team:analysis:abc" {
		t.Errorf("AnalysisKey = %q", got)
	}
	if !strings.HasPrefix(scoped.CompletionKey("m", "p"), "team:completion:") {
		t.Error("CompletionKey should be prefixed")
	}

	if got := NewScopedKeyer(nil, "p:").AnalysisKey("x"); got != "p:analysis:x" {
		t.Errorf("nil inner keyer: %q", got)
	}
	if _, ok := NewScopedKeyer(nil, "").(DefaultKeyer); !ok {
		t.Error("empty prefix should return the inner keyer")
	}
}
