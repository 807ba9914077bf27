// Package inflight tracks operation ids to suppress duplicate work.
//
// Two callers use it: the upload flow (one submission in flight at a time)
// and the response collector (a turn must not be scored twice when the
// advance action fires more than once).
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard records seen operation ids to ensure at-most-once processing.
type Guard interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set, allowing a retry. Used when
	// an operation was marked as seen but failed to start (e.g. queue
	// backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// memoryGuard implements Guard with a bounded map. When the bound is
// reached, the oldest recorded id is evicted (FIFO over a ring). A maxSize
// of zero or less means unbounded.
type memoryGuard struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // ring of recorded ids, oldest at head
	head    int
	maxSize int
	size    atomic.Int64
}

// Option applies a configuration option to the memory guard.
type Option func(*memoryGuard)

// WithMaxSize bounds the number of ids kept in memory.
func WithMaxSize(maxSize int) Option {
	return func(g *memoryGuard) {
		g.maxSize = maxSize
	}
}

// NewMemoryGuard creates an in-memory guard with configuration options.
func NewMemoryGuard(opts ...Option) Guard {
	g := &memoryGuard{
		maxSize: 10_000,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.seen = make(map[string]struct{})
	if g.maxSize > 0 {
		g.order = make([]string, 0, g.maxSize)
	}

	return g
}

func (g *memoryGuard) SeenAndRecord(ctx context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[id]; exists {
		return true
	}

	if g.maxSize > 0 && len(g.seen) >= g.maxSize {
		g.evictOldest()
	}

	g.seen[id] = struct{}{}
	if g.maxSize > 0 {
		g.order = append(g.order, id)
	}
	g.size.Add(1)
	return false
}

func (g *memoryGuard) Unrecord(ctx context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[id]; !exists {
		return
	}
	delete(g.seen, id)
	g.size.Add(-1)
	// The stale ring slot is skipped lazily by evictOldest.
}

// evictOldest removes the oldest still-recorded id. Must hold g.mu.
func (g *memoryGuard) evictOldest() {
	for g.head < len(g.order) {
		id := g.order[g.head]
		g.head++
		if _, exists := g.seen[id]; exists {
			delete(g.seen, id)
			g.size.Add(-1)
			break
		}
	}
	// Compact the ring once the head has consumed half the slice.
	if g.head > 0 && g.head*2 >= len(g.order) {
		g.order = append(g.order[:0], g.order[g.head:]...)
		g.head = 0
	}
}

func (g *memoryGuard) Size() int64 {
	return g.size.Load()
}
