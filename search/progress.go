package search

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a single self-overwriting progress line for long
// document runs (bulk indexing, CLI import). It is safe for concurrent use;
// pool workers report completed batches through Increment.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	done     int
	every    int
	reported int
	began    time.Time
	running  bool
}

var _ progressReporter = (*ProgressTracker)(nil)

// NewProgressTracker creates a tracker for total documents that prints to out
// whenever at least every documents have completed since the last line.
func NewProgressTracker(out io.Writer, total, every int) *ProgressTracker {
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{out: out, total: total, every: every}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.began = time.Now()
	p.running = true
	p.done = 0
	p.reported = 0
}

// Update sets the number of completed documents.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.advance(done)
	}
}

// Increment adds delta completed documents.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.advance(p.done + delta)
	}
}

// Finish marks every document complete and ends the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = p.total
	p.print()
	fmt.Fprintln(p.out)
	p.running = false
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return 0
	}
	return time.Since(p.began)
}

// advance must be called with mu held.
func (p *ProgressTracker) advance(done int) {
	p.done = min(done, p.total)
	if p.done-p.reported >= p.every {
		p.print()
		p.reported = p.done
	}
}

// print must be called with mu held.
func (p *ProgressTracker) print() {
	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}
	perSec := 0.0
	if secs := time.Since(p.began).Seconds(); secs > 0 {
		perSec = float64(p.done) / secs
	}
	fmt.Fprintf(p.out, "\rProgress: %d/%d (%.1f%%) - %.1f documents/s", p.done, p.total, pct, perSec)
}
