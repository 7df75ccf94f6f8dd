package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/cache"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/index"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/poiesic/docsearch/storage"
)

// Request is one similarity query.
type Request struct {
	Text   string
	UserID string
	TopK   int
	// Threshold is echoed back and keyed in the cache but does not filter results.
	Threshold float64
}

// Response carries the hits for a Request.
type Response struct {
	Query     string
	Hits      []core.Hit
	Threshold float64
	Cached    bool
}

// Service is the query orchestrator. It owns the vector catalog; one Service
// is shared by every request.
type Service struct {
	docs     storage.DocumentRepository
	limiter  ratelimit.Limiter
	results  *cache.ResultCache
	embedder ai.Embedder
	catalog  *index.Catalog
	monitor  Monitor
	logger   *slog.Logger

	// bulk load
	pool           *ants.Pool
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
	progress       *progressWriter
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor installs hooks observing the service.
func WithMonitor(monitor Monitor) Option {
	return func(s *Service) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithPoolSize sets the worker pool size used to embed documents during Populate.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents Populate embeds per EmbedTexts call.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			return fmt.Errorf("search: batch size must be positive, got %d", size)
		}
		s.batchSize = size
		return nil
	}
}

// WithRetry sets how often Populate retries a failed embedding batch.
// Default is 3 attempts starting at a 1s delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Service) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxAttempts = maxAttempts
		s.retryBaseDelay = baseDelay
		return nil
	}
}

// NewService creates a search service with an empty catalog sized to the
// embedder's dimension. A nil results cache disables caching.
func NewService(
	docs storage.DocumentRepository,
	limiter ratelimit.Limiter,
	results *cache.ResultCache,
	embedder ai.Embedder,
	opts ...Option,
) (*Service, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if results == nil {
		results = cache.NewResultCache(cache.NopStore{})
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		docs:           docs,
		limiter:        limiter,
		results:        results,
		embedder:       embedder,
		catalog:        index.NewCatalog(embedder.Dimension()),
		monitor:        &noopMonitor{},
		logger:         slog.Default(),
		pool:           pool,
		batchSize:      100,
		maxAttempts:    3,
		retryBaseDelay: time.Second,
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// Release stops the bulk-load worker pool.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// IndexSize reports the number of vectors in the catalog.
func (s *Service) IndexSize() int {
	return s.catalog.Len()
}

// Search runs one query through rate limiting, the cache and, on a miss, the
// vector catalog.
func (s *Service) Search(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	s.monitor.SearchStarted(req)
	defer func() {
		s.monitor.SearchFinished(req, resp, err, time.Since(start))
	}()

	req.UserID = strings.TrimSpace(req.UserID)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	decision, err := s.limiter.Allow(ctx, req.UserID)
	if err != nil {
		s.logger.Error("rate limiter failed", "user", req.UserID, "err", err)
		return nil, err
	}
	if !decision.Allowed {
		s.monitor.RateLimited(req.UserID, decision)
		s.logger.Debug("rate limited", "user", req.UserID, "calls", decision.Calls, "limit", decision.Limit)
		return nil, fmt.Errorf("%w: %d calls made, limit is %d", ErrRateLimited, decision.Calls, decision.Limit)
	}

	key := cache.Key(req.Text, req.UserID, req.TopK, req.Threshold)
	hits, found, err := s.results.Get(ctx, key)
	if err != nil {
		s.logger.Error("cache lookup failed", "err", err)
		return nil, err
	}
	if found {
		s.monitor.CacheHit(key)
		return &Response{Query: req.Text, Hits: hits, Threshold: req.Threshold, Cached: true}, nil
	}
	s.monitor.CacheMiss(key)

	hits, err = s.nearest(ctx, core.NormalizeQuery(req.Text), req.TopK)
	if err != nil {
		return nil, err
	}

	if err := s.results.Put(ctx, key, hits); err != nil {
		s.logger.Error("failed to cache search results", "err", err)
		return nil, fmt.Errorf("caching search results: %w", err)
	}
	return &Response{Query: req.Text, Hits: hits, Threshold: req.Threshold}, nil
}

func validateRequest(req Request) error {
	if err := core.ValidateUserID(req.UserID); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	if err := core.ValidateTopK(req.TopK); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	if err := core.ValidateThreshold(req.Threshold); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	return nil
}

// nearest embeds text and resolves the k nearest catalog entries to documents.
// Entries whose document no longer exists are skipped.
func (s *Service) nearest(ctx context.Context, text string, k int) ([]core.Hit, error) {
	vec, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	matches := s.catalog.Search(vec, k)
	hits := make([]core.Hit, 0, len(matches))
	for _, m := range matches {
		doc, err := s.docs.Get(ctx, m.DocumentID)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("skipping indexed document missing from store", "id", m.DocumentID, "position", m.Position)
			continue
		}
		if err != nil {
			s.logger.Error("error retrieving document", "id", m.DocumentID, "err", err)
			return nil, err
		}
		hits = append(hits, core.HitFromDocument(doc))
	}
	return hits, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Error("error generating embedding", "err", err)
		return nil, err
	}
	if err := ai.CheckDimension(s.catalog.Dimension(), vec); err != nil {
		s.logger.Error("embedder returned wrong dimension", "err", err)
		return nil, err
	}
	return vec, nil
}

// AddDocument stores content as a new document and indexes it. The content
// is embedded before it is stored so a failing embedder leaves no unindexed
// document behind. Cached results are not invalidated.
func (s *Service) AddDocument(ctx context.Context, content string) (*core.Document, error) {
	if err := core.ValidateContent(content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}

	vec, err := s.embed(ctx, content)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.Create(ctx, content)
	if err != nil {
		s.logger.Error("error storing document", "err", err)
		return nil, err
	}

	pos, _ := s.catalog.AddIfAbsent(doc.ID, vec)
	s.logger.Debug("document indexed", "id", doc.ID, "position", pos)
	s.monitor.DocumentAdded(doc, s.catalog.Len())
	return doc, nil
}
