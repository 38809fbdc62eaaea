package seqcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/mmwave-lab/berperf/sim"
)

type cacheKey struct {
	mcs   string
	index int
}

// CachedStore memoizes decoded records of an inner store. Every Eb/N0 worker
// of one MCS reads the same indices, so decoded records are shared between
// them instead of being loaded once per worker. Records are returned by
// pointer and must be treated as read-only.
type CachedStore struct {
	inner sim.SequenceStore
	cache *lru.Cache
}

// NewCachedStore wraps inner with an LRU holding up to size records.
func NewCachedStore(inner sim.SequenceStore, size int) (*CachedStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating sequence LRU: %w", err)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Read returns the cached record or loads it from the inner store.
// Failed reads are not cached.
func (s *CachedStore) Read(mcs string, index int) (*sim.SequenceRecord, error) {
	key := cacheKey{mcs: sim.NormalizeMCS(mcs), index: index}
	if v, ok := s.cache.Get(key); ok {
		return v.(*sim.SequenceRecord), nil
	}
	rec, err := s.inner.Read(mcs, index)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, rec)
	return rec, nil
}

// Len returns the number of cached records.
func (s *CachedStore) Len() int {
	return s.cache.Len()
}
