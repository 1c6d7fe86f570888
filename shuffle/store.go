package shuffle

import (
	"context"
	"math/rand/v2"

	"github.com/goliatone/go-repository-shuffle/cache"
)

// Shuffler permutes n elements in place through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// DefaultShuffler is an unbiased Fisher-Yates shuffle over the global source.
func DefaultShuffler(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// PermutationStore keeps one shuffled identifier list per cache key.
type PermutationStore[ID comparable] struct {
	cache   cache.CacheService
	locks   *keyedMutex
	shuffle Shuffler

	// gens and scope are set for stores built by a Pager, whose prefix
	// invalidations must not be undone by a concurrent sliding refresh.
	gens  *generations
	scope string
}

// maxResolveAttempts bounds the retries of a lookup that overlapped a scope
// invalidation.
const maxResolveAttempts = 3

// NewPermutationStore builds a store over cacheService using shuffle to order new permutations.
// Stores that share a cache should be created through the same Pager so they
// also share the per-key locks.
func NewPermutationStore[ID comparable](cacheService cache.CacheService, shuffle Shuffler) *PermutationStore[ID] {
	if shuffle == nil {
		shuffle = DefaultShuffler
	}
	return &PermutationStore[ID]{
		cache:   cacheService,
		locks:   newKeyedMutex(),
		shuffle: shuffle,
	}
}

func storeFor[ID comparable](p *Pager, scope string) *PermutationStore[ID] {
	return &PermutationStore[ID]{cache: p.cache, locks: p.locks, shuffle: p.shuffle, gens: p.gens, scope: scope}
}

// ResolveOrCreate returns the permutation stored under key. On a miss it calls
// fetch, shuffles a copy of the identifiers and stores it; created reports
// whether that happened. Hits leave the permutation untouched.
//
// The check and the creation run under a lock for key alone, so concurrent
// first requests for one session build exactly one permutation. Fetch errors
// are returned and nothing is stored.
//
// A lookup that overlapped an invalidation of the store's scope may have
// written the dropped permutation back. Its entry is deleted and the lookup
// retried, so the invalidation wins.
func (s *PermutationStore[ID]) ResolveOrCreate(ctx context.Context, key string, fetch func(ctx context.Context) ([]ID, error)) (perm []ID, created bool, err error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	if s.gens == nil {
		return s.resolve(ctx, key, fetch)
	}

	for attempt := 1; ; attempt++ {
		before := s.gens.load(s.scope)
		perm, created, err = s.resolve(ctx, key, fetch)
		if err != nil || stable(before, s.gens.load(s.scope)) {
			return perm, created, err
		}
		if derr := s.cache.Delete(ctx, key); derr != nil {
			return nil, false, derr
		}
		if attempt == maxResolveAttempts {
			return perm, created, nil
		}
	}
}

func (s *PermutationStore[ID]) resolve(ctx context.Context, key string, fetch func(ctx context.Context) ([]ID, error)) (perm []ID, created bool, err error) {
	perm, err = cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]ID, error) {
		ids, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		shuffled := make([]ID, len(ids))
		copy(shuffled, ids)
		s.shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		created = true
		return shuffled, nil
	})
	if err != nil {
		return nil, false, err
	}

	if perm == nil {
		perm = []ID{}
	}
	return perm, created, nil
}

// Invalidate drops the permutation stored under key. It waits for a lookup
// of the same key to finish so the lookup cannot store the entry again.
func (s *PermutationStore[ID]) Invalidate(ctx context.Context, key string) error {
	unlock := s.locks.Lock(key)
	defer unlock()
	return s.cache.Delete(ctx, key)
}
