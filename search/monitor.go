package search

import (
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/ratelimit"
)

// Monitor provides hooks to observe the search service.
// Implementations must be safe for concurrent use.
type Monitor interface {
	SearchStarted(req Request)
	RateLimited(userID string, decision ratelimit.Decision)
	CacheHit(key string)
	CacheMiss(key string)
	SearchFinished(req Request, resp *Response, err error, elapsed time.Duration)
	DocumentAdded(doc *core.Document, indexSize int)
	Populated(count int, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) SearchStarted(_ Request) {}
func (n *noopMonitor) RateLimited(_ string, _ ratelimit.Decision) {}
func (n *noopMonitor) CacheHit(_ string) {}
func (n *noopMonitor) CacheMiss(_ string) {}
func (n *noopMonitor) SearchFinished(_ Request, _ *Response, _ error, _ time.Duration) {}
func (n *noopMonitor) DocumentAdded(_ *core.Document, _ int) {}
func (n *noopMonitor) Populated(_ int, _ time.Duration) {}
