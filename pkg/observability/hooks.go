// Package observability provides hooks for metrics about analysis, caching
// and outbound HTTP calls.
//
// Libraries call the hooks; main registers an implementation at startup.
// The defaults are no-ops, so library code never checks for nil and tests
// need no setup:
//
//	observability.Analysis().OnAnalyze(ctx, observability.SourceLocal, 4, 1, true, d, nil)
//
// [Prometheus] implements every hook interface and exposes the collected
// metrics over HTTP:
//
//	m := observability.NewPrometheus()
//	observability.SetAnalysisHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	router.Handle("/metrics", m.Handler())
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Where an analysis result came from.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceCache  = "cache"
)

// AnalysisHooks observes [analysis.Runner]: one OnAnalyze per answered
// request and one OnFallback whenever the remote analyzer had to be
// bypassed.
//
// [analysis.Runner]: github.com/matzehuels/pipegraph/pkg/analysis
type AnalysisHooks interface {
	OnAnalyze(ctx context.Context, source string, nodes, edges int, isDAG bool, duration time.Duration, err error)
	OnFallback(ctx context.Context, reason error)
}

// CacheHooks observes cache lookups. keyType is "analysis" or "completion".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes outbound calls made by the integrations client.
// OnError is called for transport failures only; a response with an error
// status goes to OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopAnalysisHooks ignores every event.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnAnalyze(context.Context, string, int, int, bool, time.Duration, error) {
}
func (NoopAnalysisHooks) OnFallback(context.Context, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// registry is replaced as a whole on every change, so the hot-path getters
// read it without locking.
type registry struct {
	analysis AnalysisHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current  atomic.Pointer[registry]
	updateMu sync.Mutex
)

func init() { Reset() }

func update(fn func(r *registry)) {
	updateMu.Lock()
	defer updateMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetAnalysisHooks registers analysis hooks. A nil argument is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	if h != nil {
		update(func(r *registry) { r.analysis = h })
	}
}

// SetCacheHooks registers cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP client hooks. A nil argument is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks { return current.Load().analysis }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	updateMu.Lock()
	defer updateMu.Unlock()
	current.Store(&registry{
		analysis: NoopAnalysisHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
