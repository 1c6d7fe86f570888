package di

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-shuffle/cache"
	"github.com/goliatone/go-repository-shuffle/shuffle"
	"github.com/redis/go-redis/v9"
)

// Container provides dependency injection for shuffle components.
// It owns the permutation cache and the pager shared by every listing,
// and provides factory functions for feeds and invalidating repositories.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	pager         *shuffle.Pager
	config        cache.Config
}

// NewContainer creates a container backed by the in-process sturdyc cache.
func NewContainer(config cache.Config, opts ...shuffle.Option) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return newContainer(cacheService, config, opts)
}

// NewRedisContainer creates a container whose permutations live in Redis, so
// sessions survive restarts and are shared between instances.
func NewRedisContainer(client redis.UniversalClient, config cache.Config, opts ...shuffle.Option) (*Container, error) {
	cacheService, err := cache.NewRedisCacheService(client, config)
	if err != nil {
		return nil, err
	}
	return newContainer(cacheService, config, opts)
}

// NewContainerWithDefaults creates a container using default configuration.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

func newContainer(cacheService cache.CacheService, config cache.Config, opts []shuffle.Option) (*Container, error) {
	keySerializer := cache.NewDefaultKeySerializer()

	// caller options come last so they can replace the serializer
	pager, err := shuffle.NewPager(cacheService, append([]shuffle.Option{shuffle.WithKeySerializer(keySerializer)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return &Container{
		cacheService:  cacheService,
		keySerializer: pager.KeySerializer(),
		pager:         pager,
		config:        config,
	}, nil
}

// CacheService returns the permutation cache.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the serializer the pager fingerprints scopes with.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Pager returns the shared pager.
func (c *Container) Pager() *shuffle.Pager {
	return c.pager
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewFeed binds a query and projector to the container's pager.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewFeed(container, postsQuery, toPostView)
func NewFeed[T any, ID comparable, R any](container *Container, query shuffle.Query[T, ID], project func(T) R) *shuffle.Feed[T, ID, R] {
	return shuffle.NewFeed(container.pager, query, project)
}

// NewInvalidatingRepository wraps base so its writes drop the sessions of scopes.
func NewInvalidatingRepository[T any](container *Container, base repository.Repository[T], scopes ...string) *shuffle.InvalidatingRepository[T] {
	return shuffle.NewInvalidatingRepository(base, container.pager, scopes...)
}
