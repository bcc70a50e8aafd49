package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/redis/go-redis/v9"

	"github.com/theoremus-urban-solutions/zhbus-go/config"
)

// Store holds encoded lookup results. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryStore is an LRU store bounded by entry count.
type MemoryStore struct {
	cache gcache.Cache
}

// NewMemoryStore creates an LRU store holding at most size entries
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = config.DefaultCacheSize
	}
	return &MemoryStore{cache: gcache.New(size).LRU().Build()}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := m.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached type %T", v)
	}
	return b, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 {
		return m.cache.SetWithExpire(key, value, ttl)
	}
	return m.cache.Set(key, value)
}

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore wraps a Redis client
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.prefix+key, value, ttl).Err()
}

// NewStoreFromConfig builds the configured store. The returned close func is
// never nil. A nil Store means caching is disabled.
func NewStoreFromConfig(ctx context.Context, cc config.CacheConfig, rc config.RedisConfig) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cc.Backend {
	case "", "none":
		return nil, noop, nil
	case "memory":
		return NewMemoryStore(cc.Size), noop, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", rc.Addr, err)
		}
		return NewRedisStore(rdb, rc.KeyPrefix), rdb.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cc.Backend)
}
