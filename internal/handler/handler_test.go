package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pcg/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const family = `
name: family
concept_types:
  - label: Person
relation_types:
  - label: Parent
    valence: 2
graphs:
  - "[Person *a: 'Ann'] [Person *b: 'Bob'] (Parent ?a ?b)"
processes:
  - name: ancestry
    rules:
      - name: derive
        match:
          - graph: "[Person *x: *p] [Person *y: *c] (Parent ?x ?y)"
        mutate:
          - graph: "[Person *x: ?p] [Person *y: ?c] (Ancestor ?x ?y)"
            export: true
`

func newTestServer(t *testing.T, load bool) (*httptest.Server, *service.KnowledgeService) {
	t.Helper()
	svc := service.NewKnowledgeService(service.Options{}, nil, nil, nil, nil)
	if load {
		path := filepath.Join(t.TempDir(), "family.yaml")
		require.NoError(t, os.WriteFile(path, []byte(family), 0644))
		_, err := svc.Load(context.Background(), path)
		require.NoError(t, err)
	}
	mux := http.NewServeMux()
	NewKnowledgeHandler(svc, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetKnowledge(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var resp KnowledgeResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/knowledge", nil, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "family", resp.Name)
	assert.Equal(t, 1, resp.Graphs)
	require.Len(t, resp.Processes, 1)
	assert.Equal(t, "ancestry", resp.Processes[0].Name)
	assert.Equal(t, 1, resp.Processes[0].Rules)
}

func TestNothingLoaded(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/api/knowledge", nil, &e))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/api/canon", nil, &e))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, srv.URL+"/api/knowledge/reload", nil, &e))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/processes/ancestry/run", nil, &e))
	assert.Contains(t, e.Details, "no knowledge loaded")
}

func TestRunProcessThenCanon(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var run RunResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/processes/ancestry/run", RunRequest{}, &run)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ancestry", run.Process)
	require.Len(t, run.Exports, 1)
	assert.Equal(t, "derive", run.Exports[0].Rule)
	assert.Contains(t, run.Exports[0].Graph, "Ancestor")

	var canon CanonResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/api/canon", nil, &canon))
	assert.Equal(t, "family", canon.KB)
	assert.Len(t, canon.Graphs, 2)

	var knowledge KnowledgeResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/api/knowledge/reload", nil, &knowledge))
	assert.Equal(t, 1, knowledge.Graphs, "reload discards derived graphs without a canon database")
}

func TestRunProcessErrors(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var e ErrorResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/processes/missing/run", RunRequest{}, &e))
	assert.Contains(t, e.Details, "unknown process missing")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/processes/ancestry/run", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProject(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var resp ProjectResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/project", ProjectRequest{
		Target: `(Likes [Dog: 'Rex'] [Ball])`,
		Filter: `(Likes [Dog: *who] [Ball])`,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp.Projection)
	assert.Contains(t, resp.Bindings, "*who")

	var miss ProjectResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/api/project", ProjectRequest{
		Target: `(Likes [Dog] [Ball])`,
		Filter: `(Hates [Dog] [Ball])`,
	}, &miss))
	assert.Empty(t, miss.Projection)

	var e ErrorResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/api/project", ProjectRequest{Target: "[Dog", Filter: "[Dog]"}, &e))
}

func TestStoredCanonWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t, true)
	var e ErrorResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, srv.URL+"/api/canon/family", nil, &e))
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	h := Chain(panicky, Recover(logger), Logger(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec = httptest.NewRecorder()
	Chain(ok, Recover(logger), Logger(logger)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
}
