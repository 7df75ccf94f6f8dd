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

// Package api exposes a search.Service over HTTP with gin.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/search"
)

const (
	// DefaultTopK is used when a search omits top_k.
	DefaultTopK = 5
	// DefaultThreshold is used when a search omits threshold.
	DefaultThreshold = 0.8
)

// Searcher is the subset of search.Service the handlers use.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	AddDocument(ctx context.Context, content string) (*core.Document, error)
}

var _ Searcher = (*search.Service)(nil)

// Server routes HTTP requests to a Searcher.
type Server struct {
	searcher Searcher
	metrics  http.Handler
	logger   *slog.Logger
	engine   *gin.Engine
	http     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer builds the router for searcher.
func NewServer(searcher Searcher, opts ...Option) *Server {
	s := &Server{
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))
	s.RegisterRoutes(s.engine)
	return s
}

// RegisterRoutes installs every route on r.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/search", s.handleSearch)
	r.POST("/add_document", s.handleAddDocument)
	r.GET("/health", s.handleHealth)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
