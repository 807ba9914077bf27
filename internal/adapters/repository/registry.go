// Package repository defines the in-memory session registry.
package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/aceai/aceai/internal/adapters/media"
	"github.com/aceai/aceai/internal/domain/session"
	"github.com/aceai/aceai/pkg/metrics"
)

// Default registry configuration constants.
const (
	defaultShardCount = 8
)

// Record pairs a session with its media capture controller and, in gateway
// mode, the push recognizer transcripts arrive through.
type Record struct {
	Session *session.Session
	Capture *media.Controller
	Push    *media.PushRecognizer
}

// Registry provides access to live interview sessions.
type Registry interface {
	// Put stores a record under its session id.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for a session id.
	// Returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes a record. Removing an unknown id is a no-op.
	Delete(ctx context.Context, id string)

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}

type shard struct {
	mu      sync.RWMutex
	records map[string]Record
}

// ShardedRegistry implements Registry with hash-distributed shards to keep
// lock contention per session id low.
type ShardedRegistry struct {
	shards []*shard
}

// Option applies a configuration option to the sharded registry.
type Option func(*ShardedRegistry)

// WithShardCount sets the number of shards.
func WithShardCount(count int) Option {
	return func(r *ShardedRegistry) {
		if count > 0 {
			r.shards = make([]*shard, count)
		}
	}
}

// NewShardedRegistry creates a registry with configuration options.
func NewShardedRegistry(opts ...Option) *ShardedRegistry {
	r := &ShardedRegistry{
		shards: make([]*shard, defaultShardCount),
	}

	for _, opt := range opts {
		opt(r)
	}

	for i := range r.shards {
		r.shards[i] = &shard{records: make(map[string]Record)}
	}

	metrics.UpdateRegistryShardCount(len(r.shards))
	metrics.UpdateRegistrySessionsTotal(0)

	return r
}

func (r *ShardedRegistry) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// Put stores a record under its session id.
func (r *ShardedRegistry) Put(ctx context.Context, rec Record) error {
	if rec.Session == nil {
		return ErrNilSession
	}

	s := r.shardFor(rec.Session.ID())
	s.mu.Lock()
	s.records[rec.Session.ID()] = rec
	s.mu.Unlock()

	metrics.UpdateRegistrySessionsTotal(r.Count(ctx))
	return nil
}

// Get returns the record for a session id.
func (r *ShardedRegistry) Get(ctx context.Context, id string) (Record, error) {
	s := r.shardFor(id)
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes a record.
func (r *ShardedRegistry) Delete(ctx context.Context, id string) {
	s := r.shardFor(id)
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()

	metrics.UpdateRegistrySessionsTotal(r.Count(ctx))
}

// Count returns the number of live sessions.
func (r *ShardedRegistry) Count(ctx context.Context) int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.records)
		s.mu.RUnlock()
	}
	return total
}
