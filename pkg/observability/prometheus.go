package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pipegraph"

// Prometheus records hook events as Prometheus metrics on its own registry.
// It implements [AnalysisHooks], [CacheHooks] and [HTTPHooks], and also
// carries the server-side request metrics used by the HTTP API.
type Prometheus struct {
	registry *prometheus.Registry

	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	fallbacks        prometheus.Counter

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	clientRequests *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec

	serverRequests *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them, together with
// the Go runtime and process collectors, on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Pipeline analyses by result source and outcome.",
		}, []string{"source", "outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent producing an analysis result.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"source"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_fallbacks_total",
			Help:      "Remote analyses answered locally after a failure.",
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		clientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outbound HTTP requests by host and status.",
		}, []string{"method", "host", "status"}),
		clientDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status.",
		}, []string{"method", "route", "status"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.analyses, p.analysisDuration, p.fallbacks,
		p.cacheEvents, p.cacheBytes,
		p.clientRequests, p.clientDuration,
		p.serverRequests, p.serverDuration,
	)
	return p
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// OnAnalyze implements [AnalysisHooks].
func (p *Prometheus) OnAnalyze(_ context.Context, source string, _, _ int, isDAG bool, d time.Duration, err error) {
	outcome := "dag"
	switch {
	case err != nil:
		outcome = "error"
	case !isDAG:
		outcome = "cyclic"
	}
	p.analyses.WithLabelValues(source, outcome).Inc()
	p.analysisDuration.WithLabelValues(source).Observe(d.Seconds())
}

// OnFallback implements [AnalysisHooks].
func (p *Prometheus) OnFallback(context.Context, error) { p.fallbacks.Inc() }

// OnCacheHit implements [CacheHooks].
func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [CacheHooks].
func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [CacheHooks].
func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements [HTTPHooks]. Requests are counted on completion.
func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

// OnResponse implements [HTTPHooks].
func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	p.clientRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	p.clientDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

// OnError implements [HTTPHooks].
func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.clientRequests.WithLabelValues(method, host, "error").Inc()
}

// ObserveServerRequest records one handled API request. route should be
// the route pattern, not the raw path, to keep label cardinality bounded.
func (p *Prometheus) ObserveServerRequest(method, route string, status int, d time.Duration) {
	p.serverRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.serverDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ AnalysisHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
