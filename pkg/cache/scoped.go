package cache

// ScopedKeyer prefixes every key of an inner Keyer. It lets several
// deployments share one Redis database without colliding:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pipegraph:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer]; an empty prefix returns inner unchanged.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AnalysisKey implements [Keyer].
func (k *ScopedKeyer) AnalysisKey(snapshotHash string) string {
	return k.prefix + k.inner.AnalysisKey(snapshotHash)
}

// CompletionKey implements [Keyer].
func (k *ScopedKeyer) CompletionKey(model, prompt string) string {
	return k.prefix + k.inner.CompletionKey(model, prompt)
}
