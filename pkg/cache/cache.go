package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Callers treat cache errors as misses, so a broken cache slows
// things down but never changes a result.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLAnalysis applies to analysis results. Results are a pure function
	// of the snapshot, so they only expire to bound cache size.
	TTLAnalysis = 7 * 24 * time.Hour

	// TTLCompletion applies to text completions.
	TTLCompletion = time.Hour
)

// Keyer builds cache keys. Implementations must return distinct keys for
// inputs that can produce distinct values.
type Keyer interface {
	// AnalysisKey identifies the analysis of a snapshot by its content hash.
	AnalysisKey(snapshotHash string) string

	// CompletionKey identifies a completion for a model and prompt.
	CompletionKey(model, prompt string) string
}

// DefaultKeyer produces namespaced keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey implements [Keyer].
func (DefaultKeyer) AnalysisKey(snapshotHash string) string {
	return "analysis:" + snapshotHash
}

// CompletionKey implements [Keyer].
func (DefaultKeyer) CompletionKey(model, prompt string) string {
	return hashKey("completion", model, prompt)
}
