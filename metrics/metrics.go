// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exports search service activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/poiesic/docsearch/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes used as the "outcome" label.
const (
	OutcomeComputed    = "computed"
	OutcomeCached      = "cached"
	OutcomeBadInput    = "bad_input"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Monitor implements search.Monitor on a private Prometheus registry.
type Monitor struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	rateLimited    prometheus.Counter
	documentsAdded prometheus.Counter
	indexSize      prometheus.Gauge
	populated      prometheus.Counter
	populateTime   prometheus.Gauge
}

var _ search.Monitor = (*Monitor)(nil)

// New creates a Monitor with its own registry, including Go runtime and
// process collectors.
func New() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsearch_searches_total",
				Help: "Search requests by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsearch_search_duration_seconds",
				Help:    "Search latency in seconds by outcome",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{"outcome"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsearch_cache_lookups_total",
				Help: "Result cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docsearch_rate_limited_total",
			Help: "Search calls rejected by the rate limiter",
		}),
		documentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docsearch_documents_added_total",
			Help: "Documents added through the service",
		}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docsearch_index_vectors",
			Help: "Vectors currently held in the in-memory index",
		}),
		populated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docsearch_index_populated_total",
			Help: "Documents indexed by bulk loads",
		}),
		populateTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docsearch_index_populate_seconds",
			Help: "Duration of the most recent bulk load",
		}),
	}

	m.registry.MustRegister(
		m.searches, m.searchDuration, m.cacheLookups, m.rateLimited,
		m.documentsAdded, m.indexSize, m.populated, m.populateTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetIndexSize records the current catalog size.
func (m *Monitor) SetIndexSize(n int) {
	m.indexSize.Set(float64(n))
}

func (m *Monitor) SearchStarted(search.Request) {}

func (m *Monitor) RateLimited(string, ratelimit.Decision) {
	m.rateLimited.Inc()
}

func (m *Monitor) CacheHit(string) {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Monitor) CacheMiss(string) {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Monitor) SearchFinished(_ search.Request, resp *search.Response, err error, elapsed time.Duration) {
	outcome := Outcome(resp, err)
	m.searches.WithLabelValues(outcome).Inc()
	m.searchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Monitor) DocumentAdded(_ *core.Document, indexSize int) {
	m.documentsAdded.Inc()
	m.SetIndexSize(indexSize)
}

func (m *Monitor) Populated(count int, elapsed time.Duration) {
	m.populated.Add(float64(count))
	m.populateTime.Set(elapsed.Seconds())
}

// Outcome classifies a finished search.
func Outcome(resp *search.Response, err error) string {
	switch {
	case errors.Is(err, search.ErrBadInput):
		return OutcomeBadInput
	case errors.Is(err, search.ErrRateLimited):
		return OutcomeRateLimited
	case err != nil:
		return OutcomeError
	case resp != nil && resp.Cached:
		return OutcomeCached
	default:
		return OutcomeComputed
	}
}
