package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/vmihailenco/msgpack/v5"
)

// redisService stores entries in Redis, encoded with msgpack.
// Every round trip goes through a circuit breaker so an unreachable Redis
// fails requests fast instead of stalling each one on dial timeouts.
type redisService struct {
	client  redis.UniversalClient
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

func newRedisBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "shuffle-redis",
		MaxRequests: 1,
		Interval:    5 * time.Second,
		Timeout:     3 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// misses and cancelled callers say nothing about Redis health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, redis.Nil) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// NewRedisService creates a Redis backed cache service.
// Capacity and shard settings do not apply; Redis owns memory management.
func NewRedisService(client redis.UniversalClient, cfg Config) (*redisService, error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisService{client: client, cfg: cfg, breaker: newRedisBreaker()}, nil
}

func (s *redisService) key(key string) string {
	return s.cfg.KeyPrefix + key
}

// GetOrFetch reads key, refreshing its TTL when sliding, and on a miss stores
// the fetched value with SET NX. A caller that loses the NX race returns the
// value stored by the winner, so every replica serves the same entry.
func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	resultType, err := validateFetchFn(fetchFn)
	if err != nil {
		return nil, err
	}

	value, found, err := s.read(ctx, key, resultType)
	if err != nil || found {
		return value, err
	}

	value, err = callFetch(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cacheinfra: encode %q: %w", key, err)
	}

	stored, err := s.breaker.Execute(func() (any, error) {
		return s.client.SetNX(ctx, s.key(key), data, s.cfg.TTL).Result()
	})
	if err != nil {
		return nil, err
	}
	if stored.(bool) {
		return value, nil
	}

	winner, found, err := s.read(ctx, key, resultType)
	if err != nil {
		return nil, err
	}
	if !found {
		// winner expired between SETNX and GET; our value is still a valid answer
		return value, nil
	}
	return winner, nil
}

func (s *redisService) read(ctx context.Context, key string, resultType reflect.Type) (any, bool, error) {
	raw, err := s.breaker.Execute(func() (any, error) {
		if s.cfg.Sliding {
			return s.client.GetEx(ctx, s.key(key), s.cfg.TTL).Bytes()
		}
		return s.client.Get(ctx, s.key(key)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	value, err := decodeValue(raw.([]byte), resultType)
	if err != nil {
		return nil, false, fmt.Errorf("cacheinfra: decode %q: %w", key, err)
	}
	return value, true, nil
}

// decodeValue unmarshals data into a fresh value of type t.
func decodeValue(data []byte, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// Delete removes a single entry.
func (s *redisService) Delete(ctx context.Context, key string) error {
	return s.del(ctx, s.key(key))
}

func (s *redisService) del(ctx context.Context, keys ...string) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	return err
}

// DeleteByPrefix scans for keys starting with prefix and deletes them.
func (s *redisService) DeleteByPrefix(ctx context.Context, prefix string) error {
	match := escapeGlob(s.key(prefix)) + "*"

	iter := s.client.Scan(ctx, 0, match, 256).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 256 {
			if err := s.del(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.del(ctx, batch...)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
