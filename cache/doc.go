// Package cache provides the keyed store that holds shuffle permutations.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: an atomic read-through store with per-entry expiration
//   - KeySerializer: builds stable cache keys from a name and arguments
//
// Two backends are provided. NewCacheService returns an in-process store built
// on sturdyc; NewRedisCacheService stores entries in Redis so several replicas
// share the same sessions.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	ids, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]int64, error) {
//		return loadIDs(ctx)
//	})
//
// # Expiration
//
// Entries expire after Config.TTL. With Config.Sliding set, every hit re-arms
// the TTL, so an entry is only evicted after it has been idle for a full TTL.
// DefaultConfig uses a sliding ten minute window.
//
// # Atomic Get-or-Create
//
// GetOrFetch never runs two fetches for the same absent key at the same time
// within one backend instance. The Redis backend additionally uses SET NX so
// that replicas racing on the same key converge on the first stored value.
// Its Redis calls go through a circuit breaker, so an outage fails requests
// fast rather than on every dial timeout.
//
// # Key Serialization Strategy
//
// The default key serializer uses reflection to handle various Go types:
//
//   - Basic types: direct string representation
//   - Stringers (uuid.UUID, time.Time, ...): their canonical string form
//   - Slices/arrays: recursive serialization of elements
//   - Maps: sorted key-value pairs for deterministic output
//   - Structs: exported fields with name:value pairs
//   - Funcs and channels: their type only
//
// Keys never embed memory addresses, so they are stable across restarts.
// Fingerprint hashes a serialized key with xxhash when a short key segment is needed.
package cache
