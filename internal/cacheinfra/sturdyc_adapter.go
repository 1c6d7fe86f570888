package cacheinfra

import (
	"context"
	"strings"
	"sync"

	"github.com/viccon/sturdyc"
)

// sturdycService wraps a sturdyc client providing in-process caching.
type sturdycService struct {
	client  *sturdyc.Client[any]
	sliding bool

	// mu keeps deletes out of the gap between a sliding Get and its Set.
	mu sync.RWMutex
}

// NewSturdycService creates a new sturdyc cache service adapter.
// It validates the configuration and initializes a sturdyc client with the provided settings.
// Extra options are appended after the ones derived from cfg; tests use them to inject a clock.
func NewSturdycService(cfg Config, extra ...sturdyc.Option) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := append(cfg.ToSturdycOptions(), extra...)
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &sturdycService{client: client, sliding: cfg.Sliding}, nil
}

// GetOrFetch returns the value stored under key, calling fetchFn on a miss.
//
// sturdyc deduplicates in-flight fetches per key, so concurrent misses share a
// single call. On a hit with sliding expiration the entry is written back,
// which resets its TTL.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if _, err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if value, ok := s.hit(key); ok {
		return value, nil
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetch(ctx, fetchFn)
	})
}

func (s *sturdycService) hit(key string) (any, bool) {
	if !s.sliding {
		return s.client.Get(key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.client.Get(key)
	if ok {
		s.client.Set(key, value)
	}
	return value, ok
}

// Delete removes a single entry from the cache.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size reports the number of entries currently held.
func (s *sturdycService) Size() int {
	return s.client.Size()
}
