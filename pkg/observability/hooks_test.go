package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAnalysisHooks{}
	a.OnAnalyze(ctx, SourceLocal, 4, 1, true, time.Millisecond, nil)
	a.OnFallback(ctx, errors.New("remote down"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "analysis")
	c.OnCacheMiss(ctx, "analysis")
	c.OnCacheSet(ctx, "analysis", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:8000", "/pipelines/parse")
	h.OnResponse(ctx, "POST", "localhost:8000", "/pipelines/parse", 200, time.Second)
	h.OnError(ctx, "POST", "localhost:8000", "/pipelines/parse", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should return NoopAnalysisHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customAnalysis := &testAnalysisHooks{}
	SetAnalysisHooks(customAnalysis)
	if Analysis() != customAnalysis {
		t.Error("SetAnalysisHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testAnalysisHooks{}
	SetAnalysisHooks(custom)
	SetAnalysisHooks(nil)

	if Analysis() != custom {
		t.Error("SetAnalysisHooks(nil) should be ignored")
	}
}

type testAnalysisHooks struct{ NoopAnalysisHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
