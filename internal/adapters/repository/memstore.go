package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/okian/truscore/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultShardCount = 8
)

// MemStore implements Store with a sharded in-memory map. Sharding
// keeps write contention per key low when many batches are in flight;
// two concurrent batches racing on the same uncached id both apply
// their write under the shard lock (last writer wins).
type MemStore struct {
	shards []*shard
}

type shard struct {
	mu     sync.RWMutex
	scores map[string]float64
}

// NewMemStore creates a new sharded in-memory score cache.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{}

	cfg := &config{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(cfg)
	}

	s.shards = make([]*shard, cfg.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{scores: make(map[string]float64)}
	}

	return s
}

// shardFor picks the shard owning a product id.
func (s *MemStore) shardFor(productID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Get returns the cached score for a product id, if present.
func (s *MemStore) Get(_ context.Context, productID string) (float64, bool) {
	sh := s.shardFor(productID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	score, ok := sh.scores[productID]
	return score, ok
}

// Set stores the score for a product id, replacing any prior value.
func (s *MemStore) Set(ctx context.Context, productID string, score float64) {
	sh := s.shardFor(productID)
	sh.mu.Lock()
	sh.scores[productID] = score
	sh.mu.Unlock()

	metrics.UpdateCacheEntries(s.Len(ctx))
}

// Len returns the number of cached entries across all shards.
func (s *MemStore) Len(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.scores)
		sh.mu.RUnlock()
	}
	return total
}
