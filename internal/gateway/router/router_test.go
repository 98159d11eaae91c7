package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
	searchhandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

type testServer struct {
	*httptest.Server
	lib    *library.Library
	opened []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	qc, err := cache.New(cache.Options{LocalSize: 16, Metrics: m})
	require.NoError(t, err)

	lib, err := library.Open(
		config.LibraryConfig{Path: t.TempDir(), DBDir: "db"},
		config.SearchConfig{TopK: 5, MaxTopK: 100},
		library.WithObserver(qc),
	)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })

	ts := &testServer{lib: lib}
	exec := executor.New(lib,
		executor.WithCache(qc),
		executor.WithMetrics(m),
		executor.WithOpener(executor.OpenerFunc(func(path string) error {
			ts.opened = append(ts.opened, path)
			return nil
		})),
	)
	checker := health.NewChecker()
	checker.Register("library", health.Ping(true, lib.Check))

	ts.Server = httptest.NewServer(New(Handlers{
		Search:  searchhandler.New(exec, qc),
		Ingest:  ingesthandler.New(lib),
		Health:  checker,
		Metrics: m,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) addFile(t *testing.T, name, content, title string, authors ...string) document.ID {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	body, _ := json.Marshal(map[string]any{"path": src, "title": title, "authors": authors})
	resp, err := http.Post(ts.URL+"/api/v1/documents", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID document.ID `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.ID
}

func (ts *testServer) search(t *testing.T, q string) []document.ID {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/v1/search?q=" + q)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		IDs []document.ID `json:"ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.IDs
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAPI_AddSearchMetaActivateRemove(t *testing.T) {
	ts := newTestServer(t)
	rustID := ts.addFile(t, "rust.pdf", "rust bytes", "Rust Programming", "Steve Klabnik", "Carol Nichols")
	ts.addFile(t, "cook.epub", "cook bytes", "Cooking at Home")

	ids := ts.search(t, "rust")
	require.NotEmpty(t, ids)
	assert.Equal(t, rustID, ids[0])

	resp, err := http.Get(ts.URL + "/api/v1/documents/" + rustID.String())
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	resp.Body.Close()
	assert.Equal(t, map[string]string{
		"id":          rustID.String(),
		"name":        "Rust Programming",
		"description": "Steve Klabnik, Carol Nichols",
	}, meta)

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/documents/"+rustID.String()+"/activate")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, ts.opened, 1)
	assert.Equal(t, ".pdf", filepath.Ext(ts.opened[0]))

	resp = do(t, http.MethodDelete, ts.URL+"/api/v1/documents/"+rustID.String())
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, ts.search(t, "rust"), rustID, "cache invalidated on removal")

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/documents/"+rustID.String())
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/v1/documents/"+rustID.String())
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.addFile(t, "a.pdf", "same", "First")

	src := filepath.Join(t.TempDir(), "b.pdf")
	require.NoError(t, os.WriteFile(src, []byte("same"), 0o644))
	body, _ := json.Marshal(map[string]any{"path": src, "title": "Second"})
	resp, err := http.Post(ts.URL+"/api/v1/documents", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/v1/documents", "application/json", bytes.NewReader([]byte(`{"title":""}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, path := range []string{"/api/v1/search", "/api/v1/search?q=x&k=0", "/api/v1/documents/not-hex"} {
		resp := do(t, http.MethodGet, ts.URL+path)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestAPI_HealthAndCache(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/health/ready")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ts.search(t, "anything")
	ts.search(t, "anything")
	resp = do(t, http.MethodGet, ts.URL+"/api/v1/cache/stats")
	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1.0, stats["hits"])

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/cache/invalidate")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ErrorBodies(t *testing.T) {
	ts := newTestServer(t)

	readError := func(resp *http.Response) string {
		t.Helper()
		defer resp.Body.Close()
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["error"]
	}

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/search?q=x&k=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `k must be a positive integer, got "0"`, readError(resp))

	resp = do(t, http.MethodDelete, ts.URL+"/api/v1/documents/xyz")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `invalid document id "xyz"`, readError(resp))

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/documents/00000000000000ff")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readError(resp), "not found")

	uncached := searchhandler.New(executor.New(ts.lib), nil)
	rec := httptest.NewRecorder()
	uncached.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"caching is disabled"}`, rec.Body.String())
}
