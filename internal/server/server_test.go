package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	perrors "github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

const samplePayload = `{
  "nodes": [
    {"id": "1", "type": "customInput", "data": {"inputName": "userInput"}, "position": {"x": 100, "y": 100}},
    {"id": "2", "type": "llm", "data": {}, "position": {"x": 400, "y": 100}},
    {"id": "3", "type": "customOutput", "data": {"outputName": "finalResult"}, "position": {"x": 700, "y": 100}},
    {"id": "4", "type": "text", "data": {"text": "Translate this: {{ input }}"}, "position": {"x": 100, "y": 300}}
  ],
  "edges": [
    {"id": "e1-2", "source": "1", "sourceHandle": "value", "target": "2", "targetHandle": "system"}
  ]
}`

func newTestServer(t *testing.T, metrics *observability.Prometheus) http.Handler {
	t.Helper()
	logger := log.New(io.Discard)
	return New(Options{}, analysis.NewRunner(nil, nil, nil, logger), metrics, logger).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) perrors.Code {
	t.Helper()
	return decodeBody[errorBody](t, rec).Error.Code
}

func TestParsePipeline(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("sample pipeline", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/pipelines/parse", samplePayload)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"num_nodes":4,"num_edges":1,"is_dag":true}`, rec.Body.String())
		assert.Equal(t, "local", rec.Header().Get(headerAnalysisSource))
	})

	t.Run("cycle", func(t *testing.T) {
		body := `{"nodes":[{"id":"a","type":"transform"},{"id":"b","type":"transform"}],
			"edges":[{"source":"a","target":"b"},{"source":"b","target":"a"}]}`
		rec := do(t, h, http.MethodPost, "/pipelines/parse", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"num_nodes":2,"num_edges":2,"is_dag":false}`, rec.Body.String())
	})

	t.Run("face value", func(t *testing.T) {
		body := `{"nodes":[{"id":"a","type":"mystery"}],"edges":[{"source":"a","target":"ghost"}]}`
		rec := do(t, h, http.MethodPost, "/pipelines/parse", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"num_nodes":1,"num_edges":1,"is_dag":true}`, rec.Body.String())
	})

	t.Run("empty pipeline", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/pipelines/parse", `{"nodes":[],"edges":[]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"num_nodes":0,"num_edges":0,"is_dag":true}`, rec.Body.String())
	})

	t.Run("malformed", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/pipelines/parse", `{"nodes": [`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, perrors.ErrCodeInvalidSnapshot, errorCode(t, rec))
	})
}

func TestParsePipelineBodyLimit(t *testing.T) {
	logger := log.New(io.Discard)
	h := New(Options{MaxBodyBytes: 16}, nil, nil, logger).Handler()
	rec := do(t, h, http.MethodPost, "/pipelines/parse", samplePayload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, perrors.ErrCodeInvalidInput, errorCode(t, rec))
}

func TestResolvePorts(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("text node", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nodes/ports",
			`{"id":"4","type":"text","data":{"text":"{{a}} and {{b}} and {{a}}"}}`)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[portsResponse](t, rec)
		ids := make([]string, len(resp.Ports))
		for i, p := range resp.Ports {
			ids[i] = p.ID
		}
		assert.Equal(t, []string{"4-a", "4-b", "output"}, ids)
		assert.Equal(t, 100.0/3, resp.Layout["4-a"].Offset)
		assert.False(t, resp.Layout["output"].HasOffset)
	})

	t.Run("alias kind", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nodes/ports", `{"id":"1","type":"customInput","data":{}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[portsResponse](t, rec)
		require.Len(t, resp.Ports, 1)
		assert.Equal(t, graph.Source, resp.Ports[0].Direction)
	})

	tests := []struct {
		name   string
		body   string
		status int
		code   perrors.Code
	}{
		{"missing id", `{"type":"text"}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"unknown kind", `{"id":"x","type":"mystery"}`, http.StatusUnprocessableEntity, perrors.ErrCodeUnknownKind},
		{"bad url", `{"id":"x","type":"api","data":{"url":"not a url"}}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad method", `{"id":"x","type":"api","data":{"method":"PATCH"}}`, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/nodes/ports", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Build.Version)
}

func TestNotFoundRoute(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, perrors.ErrCodeNotFound, errorCode(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, observability.NewPrometheus())

	do(t, h, http.MethodPost, "/pipelines/parse", samplePayload)
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/pipelines/parse"`)
}

func TestCORS(t *testing.T) {
	logger := log.New(io.Discard)
	h := New(Options{AllowedOrigins: []string{"http://localhost:3000"}}, nil, nil, logger).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/pipelines/parse", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusTeapot, map[string]int{"a": 1})
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"a\":1}\n", rec.Body.String())
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		err  error
		code perrors.Code
	}{
		{graph.ErrInvalidEdge, perrors.ErrCodeInvalidEdge},
		{graph.ErrDuplicateNodeID, perrors.ErrCodeDuplicateID},
		{graph.ErrUnknownKind, perrors.ErrCodeUnknownKind},
		{graph.ErrInvalidNodeID, perrors.ErrCodeInvalidNode},
		{graph.ErrNodeNotFound, perrors.ErrCodeNotFound},
		{graph.ErrEdgeNotFound, perrors.ErrCodeNotFound},
		{ErrWorkspaceNotFound, perrors.ErrCodeNotFound},
		{perrors.New(perrors.ErrCodeTimeout, "slow"), perrors.ErrCodeTimeout},
		{bytes.ErrTooLarge, perrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, toAPIError(tt.err).Code)
		})
	}
	assert.Equal(t, "internal error", toAPIError(bytes.ErrTooLarge).Message)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(Options{WorkspaceTTL: time.Minute}, nil, nil, log.New(io.Discard))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
