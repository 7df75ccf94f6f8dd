package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docsearch/ai/mock"
	"github.com/poiesic/docsearch/cache"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/metrics"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/poiesic/docsearch/search"
	"github.com/poiesic/docsearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fixture struct {
	server  *Server
	monitor *metrics.Monitor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs, users, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	store, err := cache.NewMemoryStore(cache.DefaultMemorySize)
	require.NoError(t, err)
	limiter, err := ratelimit.NewLifetime(users, ratelimit.DefaultLimit)
	require.NoError(t, err)

	monitor := metrics.New()
	svc, err := search.NewService(docs, limiter, cache.NewResultCache(store), mock.NewMockEmbedder(16),
		search.WithMonitor(monitor))
	require.NoError(t, err)

	t.Cleanup(func() {
		svc.Release()
		docs.Close()
		users.Close()
		backend.Close()
	})

	return &fixture{
		server:  NewServer(svc, WithMetricsHandler(monitor.Handler())),
		monitor: monitor,
	}
}

func (f *fixture) do(method, target string, body url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_Echoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAddDocumentThenSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/add_document?content="+url.QueryEscape("hello world"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	added := decode[DocumentResponse](t, w)
	assert.Equal(t, "hello world", added.Content)

	w = f.do(http.MethodGet, "/search?text=hello+world&user_id=u1&top_k=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[SearchResponse](t, w)
	assert.Equal(t, "hello world", got.Query)
	assert.Equal(t, DefaultThreshold, got.Threshold)
	require.Len(t, got.Results, 1)
	assert.Equal(t, added.ID, got.Results[0].ID)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = f.do(http.MethodGet, "/search?text=hello+world&user_id=u1&top_k=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, got, decode[SearchResponse](t, w))
}

func TestAddDocument_Form(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/add_document", url.Values{"content": {"from a form"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from a form", decode[DocumentResponse](t, w).Content)
}

func TestAddDocument_EmptyContent(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/add_document", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, w).Detail)
}

func TestSearch_EmptyIndex(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/search?text=anything&user_id=u1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"anything","results":[],"threshold":0.8}`, w.Body.String())
}

func TestSearch_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing user", "/search?text=x"},
		{"zero top_k", "/search?text=x&user_id=u1&top_k=0"},
		{"non-numeric top_k", "/search?text=x&user_id=u1&top_k=five"},
		{"non-numeric threshold", "/search?text=x&user_id=u1&threshold=high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodGet, tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Detail)
		})
	}
}

func TestSearch_RateLimited(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < ratelimit.DefaultLimit; i++ {
		w := f.do(http.MethodGet, "/search?text=x&user_id=u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := f.do(http.MethodGet, "/search?text=x&user_id=u1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Detail, "rate limit")

	w = f.do(http.MethodGet, "/search?text=x&user_id=u2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/search?text=x&user_id=u1", nil)

	w := f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docsearch_searches_total")
}

type failingSearcher struct{ err error }

func (s failingSearcher) Search(context.Context, search.Request) (*search.Response, error) {
	return nil, s.err
}

func (s failingSearcher) AddDocument(context.Context, string) (*core.Document, error) {
	return nil, s.err
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"bad input", search.ErrBadInput, http.StatusBadRequest, search.ErrBadInput.Error()},
		{"rate limited", search.ErrRateLimited, http.StatusTooManyRequests, search.ErrRateLimited.Error()},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(failingSearcher{err: tt.err})
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?text=x&user_id=u1", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, decode[ErrorResponse](t, w).Detail)

			w = httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/add_document?content=x", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMetricsRoute_Absent(t *testing.T) {
	s := NewServer(failingSearcher{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
