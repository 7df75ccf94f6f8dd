package metrics

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/poiesic/docsearch/search"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		resp *search.Response
		err  error
		want string
	}{
		{"computed", &search.Response{}, nil, OutcomeComputed},
		{"cached", &search.Response{Cached: true}, nil, OutcomeCached},
		{"bad input", nil, fmt.Errorf("%w: x", search.ErrBadInput), OutcomeBadInput},
		{"rate limited", nil, fmt.Errorf("%w: x", search.ErrRateLimited), OutcomeRateLimited},
		{"other error", nil, assert.AnError, OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.resp, tt.err))
		})
	}
}

func TestMonitor_Counters(t *testing.T) {
	m := New()

	m.SearchFinished(search.Request{}, &search.Response{}, nil, time.Millisecond)
	m.SearchFinished(search.Request{}, &search.Response{Cached: true}, nil, time.Millisecond)
	m.SearchFinished(search.Request{}, &search.Response{Cached: true}, nil, time.Millisecond)
	m.SearchFinished(search.Request{}, nil, search.ErrRateLimited, time.Millisecond)
	m.RateLimited("u", ratelimit.Decision{Calls: 6, Limit: 5})
	m.CacheHit("k")
	m.CacheMiss("k")
	m.CacheMiss("k")
	m.DocumentAdded(&core.Document{ID: 1}, 7)
	m.Populated(6, 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeComputed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeRateLimited)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentsAdded))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.indexSize))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.populated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.populateTime))
}

func TestMonitor_Handler(t *testing.T) {
	m := New()
	m.SetIndexSize(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "docsearch_index_vectors 3")
	assert.Contains(t, string(body), "go_goroutines")
}
