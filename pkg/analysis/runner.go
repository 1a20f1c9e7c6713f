package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

// Report is a [Result] plus how it was obtained.
type Report struct {
	Result

	// Source is observability.SourceLocal, SourceRemote or SourceCache.
	Source string `json:"source"`

	// Fallback is set when a remote analysis failed and Result was
	// computed locally instead. It holds the remote error message.
	Fallback string `json:"fallback,omitempty"`

	// Cycle lists the node ids of one cycle when IsDAG is false.
	Cycle []string `json:"cycle,omitempty"`

	Duration time.Duration `json:"-"`
}

// Runner answers analysis requests for both the CLI and the HTTP API.
//
// It tries the cache, then the configured Analyzer. If the analyzer fails
// (network error, bad status, open circuit) the same local [Analyze] used
// everywhere else computes the result, so remote and local answers can
// never diverge. Successful results are cached by snapshot content.
//
// Runner holds no per-request state and is safe for concurrent use.
type Runner struct {
	Analyzer Analyzer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// TTL bounds how long results stay cached. Zero means cache.TTLAnalysis.
	TTL time.Duration
}

// NewRunner creates a runner. A nil analyzer means [Local], a nil cache
// disables caching and a nil keyer means [cache.DefaultKeyer].
func NewRunner(a Analyzer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if a == nil {
		a = Local{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Analyzer: a, Cache: c, Keyer: keyer, Logger: logger}
}

// Run analyzes s. It only fails if ctx is done before a result exists.
func (r *Runner) Run(ctx context.Context, s graph.Snapshot) (Report, error) {
	start := time.Now()
	key := r.cacheKey(s)

	if key != "" {
		var cached Result
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "analysis")
			rep := r.report(s, cached, observability.SourceCache, start)
			r.Logger.Debug("analysis cache hit", "key", key)
			return rep, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			r.Logger.Warn("analysis cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	source := observability.SourceLocal
	if _, isLocal := r.Analyzer.(Local); !isLocal {
		source = observability.SourceRemote
	}

	res, err := r.Analyzer.Analyze(ctx, s)
	var fallback string
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			observability.Analysis().OnAnalyze(ctx, source, len(s.Nodes), len(s.Edges), false, time.Since(start), ctxErr)
			return Report{}, ctxErr
		}
		r.Logger.Warn("remote analysis failed, using local result", "error", err)
		observability.Analysis().OnFallback(ctx, err)
		res = Analyze(s)
		source = observability.SourceLocal
		fallback = err.Error()
	}

	rep := r.report(s, res, source, start)
	rep.Fallback = fallback
	observability.Analysis().OnAnalyze(ctx, source, res.NumNodes, res.NumEdges, res.IsDAG, rep.Duration, nil)

	if key != "" {
		r.store(ctx, key, res)
	}

	r.Logger.Debug("analyzed pipeline",
		"nodes", res.NumNodes,
		"edges", res.NumEdges,
		"is_dag", res.IsDAG,
		"source", source,
		"duration", rep.Duration)
	return rep, nil
}

func (r *Runner) store(ctx context.Context, key string, res Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLAnalysis
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("analysis cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "analysis", len(data))
}

func (r *Runner) report(s graph.Snapshot, res Result, source string, start time.Time) Report {
	rep := Report{Result: res, Source: source}
	if !res.IsDAG {
		rep.Cycle = graph.FindCycle(s.NodeIDs(), s.Edges)
	}
	rep.Duration = time.Since(start)
	return rep
}

// cacheKey hashes the parts of s that can affect the result. Canvas
// positions and node content are left out, so moving a node or editing its
// text does not invalidate the entry.
func (r *Runner) cacheKey(s graph.Snapshot) string {
	h, err := SnapshotHash(s)
	if err != nil {
		return ""
	}
	return r.Keyer.AnalysisKey(h)
}

// SnapshotHash returns the content hash used to key analysis results: the
// SHA-256 of the node ids and edge endpoints in snapshot order.
func SnapshotHash(s graph.Snapshot) (string, error) {
	type edge struct {
		S string `json:"s"`
		T string `json:"t"`
	}
	canonical := struct {
		Nodes []string `json:"n"`
		Edges []edge   `json:"e"`
	}{
		Nodes: s.NodeIDs(),
		Edges: make([]edge, len(s.Edges)),
	}
	for i, e := range s.Edges {
		canonical.Edges[i] = edge{S: e.Source, T: e.Target}
	}
	return cache.HashJSON(canonical)
}
