package cache

import (
	"time"

	"github.com/goliatone/go-repository-shuffle/internal/cacheinfra"
	"github.com/redis/go-redis/v9"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
	// Sliding re-arms an entry's TTL every time it is read.
	Sliding bool
	// KeyPrefix namespaces keys in shared backends such as Redis.
	KeyPrefix string
}

// DefaultConfig returns a Config populated with sensible defaults.
// Entries idle for ten minutes are evicted.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the in-process cache service backed by sturdyc.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewRedisCacheService constructs a cache service that stores entries in Redis,
// so sessions survive across replicas of the same service.
func NewRedisCacheService(client redis.UniversalClient, cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewRedisService(client, cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Sliding:            c.Sliding,
		KeyPrefix:          c.KeyPrefix,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		Sliding:            cfg.Sliding,
		KeyPrefix:          cfg.KeyPrefix,
	}
}
