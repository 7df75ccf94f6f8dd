package search

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/core"
)

// progressReporter receives bulk-load progress.
type progressReporter interface {
	Start()
	Increment(delta int)
	Finish()
}

// WithProgress reports Populate progress to w every reportInterval documents.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(s *Service) error {
		if w == nil {
			s.progress = nil
			return nil
		}
		if reportInterval < 1 {
			reportInterval = 1
		}
		s.progress = &progressWriter{w: w, interval: reportInterval}
		return nil
	}
}

// progressWriter builds a fresh tracker for each Populate run once the total
// is known.
type progressWriter struct {
	w        io.Writer
	interval int
}

// Populate indexes every stored document not yet in the catalog and returns
// how many were added. Documents are embedded in batches on the worker pool
// and inserted in ascending id order, so the side table is deterministic for
// a given store. It must complete before the service accepts searches.
func (s *Service) Populate(ctx context.Context) (int, error) {
	start := time.Now()

	docs, err := s.docs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}
	s.logger.Info("populating index", "documents", len(docs), "batchSize", s.batchSize)

	var tracker progressReporter
	if s.progress != nil {
		tracker = NewProgressTracker(s.progress.w, len(docs), s.progress.interval)
		tracker.Start()
	}

	vectors, err := s.embedBatches(ctx, docs, tracker)
	if err != nil {
		return 0, err
	}

	added := 0
	for i, doc := range docs {
		if _, ok := s.catalog.AddIfAbsent(doc.ID, vectors[i]); ok {
			added++
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	elapsed := time.Since(start)
	s.logger.Info("index populated", "added", added, "indexSize", s.catalog.Len(), "elapsed", elapsed.Round(time.Millisecond))
	s.monitor.Populated(added, elapsed)
	return added, nil
}

// embedBatches embeds docs concurrently, one pool task per batch, and returns
// the vectors in docs order. The first batch error cancels the rest.
func (s *Service) embedBatches(ctx context.Context, docs []*core.Document, tracker progressReporter) ([][]float32, error) {
	vectors := make([][]float32, len(docs))
	if len(docs) == 0 {
		return vectors, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for lo := 0; lo < len(docs); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(docs))
		batch := docs[lo:hi]
		out := vectors[lo:hi]

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.embedBatch(ctx, batch, out); err != nil {
				fail(err)
				return
			}
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submitting embedding batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error("populating index failed", "err", firstErr)
		return nil, firstErr
	}
	return vectors, nil
}

func (s *Service) embedBatch(ctx context.Context, batch []*core.Document, out [][]float32) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = s.embedder.EmbedTexts(ctx, texts)
		return err
	}, s.maxAttempts, s.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", s.maxAttempts, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: expected %d embeddings, got %d", ai.ErrDimensionMismatch, len(batch), len(embeddings))
	}
	if err := ai.CheckDimension(s.catalog.Dimension(), embeddings...); err != nil {
		return err
	}
	copy(out, embeddings)
	return nil
}
