package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/pipeline"
)

const catalogJSON = `{
	"version": "20260101120000",
	"classes": [
		{"name": "Invoice", "columns": [{"name": "total", "type": "decimal"}],
		 "associations": [{"macro": "has_many", "name": "line_items", "target": "LineItem"}]},
		{"name": "LineItem", "associations": [{"macro": "belongs_to", "name": "invoice", "target": "Invoice"}]},
		{"name": "InvoicesController", "kind": "controller", "methods": {"public": ["index"]}},
		{"name": "Payment", "kind": "state-machine", "states": ["open", "settled"],
		 "events": [{"name": "settle", "from": "open", "to": "settled"}]}
	]
}`

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(c, nil, nil)
	t.Cleanup(func() { runner.Close() })
	return New(runner, cfg)
}

func post(t *testing.T, s http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "classgraph", resp.Service)
	assert.NotEmpty(t, resp.Version)
}

func TestDiagramDOT(t *testing.T) {
	s := newTestServer(t, Config{})

	t.Run("models", func(t *testing.T) {
		w := post(t, s, "/v1/diagrams/models", catalogJSON)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "text/vnd.graphviz; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "0", w.Header().Get(WarningsHeader))
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "digraph models_diagram {"), body)
		assert.Contains(t, body, `"Invoice" -> "LineItem"`)
		assert.NotContains(t, body, "InvoicesController")
	})

	t.Run("controllers", func(t *testing.T) {
		w := post(t, s, "/v1/diagrams/controllers", catalogJSON)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"InvoicesController"`)
	})

	t.Run("states", func(t *testing.T) {
		w := post(t, s, "/v1/diagrams/States?format=DOT", catalogJSON)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"open" -> "settled"`)
	})

	t.Run("query options", func(t *testing.T) {
		w := post(t, s, "/v1/diagrams/models?brief=true&filter=Invoice", catalogJSON)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := w.Body.String()
		assert.Contains(t, body, `"Invoice" [shape=box]`)
		assert.NotContains(t, body, `"LineItem"`)
	})
}

func TestDiagramDefaults(t *testing.T) {
	s := newTestServer(t, Config{Defaults: pipeline.Options{ShowLabel: true, Title: "Billing"}})
	w := post(t, s, "/v1/diagrams/models", catalogJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Billing")

	w = post(t, s, "/v1/diagrams/models?label=false", catalogJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Billing")
}

func TestDiagramSVG(t *testing.T) {
	s := newTestServer(t, Config{})

	w := post(t, s, "/v1/diagrams/models?format=svg", catalogJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "miss", w.Header().Get(CacheHeader))
	assert.Contains(t, w.Body.String(), "<svg")

	w = post(t, s, "/v1/diagrams/models?format=svg", catalogJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get(CacheHeader))
}

func TestDiagramSVGConcurrent(t *testing.T) {
	s := newTestServer(t, Config{})

	var wg sync.WaitGroup
	codes := make([]int, 8)
	bodies := make([]string, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := post(t, s, "/v1/diagrams/models?format=svg", catalogJSON)
			codes[i], bodies[i] = w.Code, w.Body.String()
		}(i)
	}
	wg.Wait()

	for i := range codes {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, bodies[0], bodies[i])
	}
}

func TestDiagramErrors(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 512})
	small := `{"classes": [{"name": "Invoice"}]}`

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"xmi", "/v1/diagrams/models?format=xmi", small, http.StatusNotImplemented, "UNSUPPORTED"},
		{"unknown type", "/v1/diagrams/views", small, http.StatusNotFound, "NOT_FOUND"},
		{"bad format", "/v1/diagrams/models?format=gif", small, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad bool", "/v1/diagrams/models?brief=sometimes", small, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad seed", "/v1/diagrams/models?seed=-1", small, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad colors", "/v1/diagrams/models?colors=rainbow", small, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad filter", "/v1/diagrams/models?filter=((", small, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", "/v1/diagrams/models", `{"classes": [`, http.StatusBadRequest, "INVALID_CATALOG"},
		{"unknown field", "/v1/diagrams/models", `{"clases": []}`, http.StatusBadRequest, "INVALID_CATALOG"},
		{"invalid catalog", "/v1/diagrams/models", `{"classes": [{"name": ""}]}`, http.StatusBadRequest, "INVALID_CATALOG"},
		{"too large", "/v1/diagrams/models", `{"version": "` + strings.Repeat("9", 1024) + `"}`, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, s, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)
		})
	}
}

func TestDiagramMalformedClassWarns(t *testing.T) {
	s := newTestServer(t, Config{})
	body := `{"classes": [
		{"name": "Invoice"},
		{"name": "Refund", "superclass": "active record"},
		{"name": "Payment", "associations": [{"macro": "composed_of", "name": "amount", "target": "Money"}]}
	]}`

	w := post(t, s, "/v1/diagrams/models", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get(WarningsHeader))
	assert.Contains(t, w.Body.String(), `"Invoice"`)
	assert.Contains(t, w.Body.String(), `"Payment"`)
	assert.NotContains(t, w.Body.String(), `"Refund"`)
	assert.NotContains(t, w.Body.String(), `"Money"`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/v1/diagrams/models", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, Config{})

	const id = "3b241101-e2bb-4255-8caf-4136c566a962"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	got := w.Header().Get(RequestIDHeader)
	assert.NotEqual(t, "not a uuid", got)
	assert.Len(t, got, 36)
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, Config{})
	post(t, s, "/v1/diagrams/models", catalogJSON)
	post(t, s, "/v1/diagrams/models?format=xmi", catalogJSON)

	assert.Equal(t, []string{"/v1/diagrams/{type}", "/v1/diagrams/{type}"}, hooks.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotImplemented}, hooks.status)
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
