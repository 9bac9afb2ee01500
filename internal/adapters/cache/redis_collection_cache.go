package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/obs"
	"travel-map-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "travelmap:journal:"

// RedisCollectionCache stores a user's fetched collections as JSON values with a TTL.
type RedisCollectionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ ports.CollectionCache = (*RedisCollectionCache)(nil)

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func NewRedisCollectionCache(rdb *redis.Client, ttl time.Duration) (*RedisCollectionCache, error) {
	if rdb == nil {
		return nil, errors.New("collection cache: redis client is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("collection cache: ttl must be positive, got %s", ttl)
	}
	return &RedisCollectionCache{rdb: rdb, ttl: ttl}, nil
}

// Ping checks the connection so startup fails fast on a bad address.
func (c *RedisCollectionCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("collection cache: ping: %w", err)
	}
	return nil
}

func (c *RedisCollectionCache) GetDestinations(ctx context.Context, user string) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, "collection.cache.GetDestinations")(&err)

	var out []domain.Destination
	if err := c.get(ctx, key(user, "destinations"), &out); err != nil {
		return nil, fmt.Errorf("get cached destinations for %q: %w", user, err)
	}
	return out, nil
}

func (c *RedisCollectionCache) PutDestinations(ctx context.Context, user string, destinations []domain.Destination) error {
	if err := c.put(ctx, key(user, "destinations"), destinations); err != nil {
		return fmt.Errorf("put cached destinations for %q: %w", user, err)
	}
	return nil
}

func (c *RedisCollectionCache) GetPlaces(ctx context.Context, user string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "collection.cache.GetPlaces")(&err)

	var out []domain.Place
	if err := c.get(ctx, key(user, "places"), &out); err != nil {
		return nil, fmt.Errorf("get cached places for %q: %w", user, err)
	}
	return out, nil
}

func (c *RedisCollectionCache) PutPlaces(ctx context.Context, user string, places []domain.Place) error {
	if err := c.put(ctx, key(user, "places"), places); err != nil {
		return fmt.Errorf("put cached places for %q: %w", user, err)
	}
	return nil
}

// Invalidate drops both collections for user.
func (c *RedisCollectionCache) Invalidate(ctx context.Context, user string) error {
	if err := c.rdb.Del(ctx, key(user, "destinations"), key(user, "places")).Err(); err != nil {
		return fmt.Errorf("invalidate cache for %q: %w", user, err)
	}
	return nil
}

func (c *RedisCollectionCache) get(ctx context.Context, k string, dst any) error {
	if k == "" {
		return errors.New("user must not be empty")
	}

	b, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", k, err)
	}
	return nil
}

func (c *RedisCollectionCache) put(ctx context.Context, k string, v any) error {
	if k == "" {
		return errors.New("user must not be empty")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := c.rdb.Set(ctx, k, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func key(user, collection string) string {
	if user == "" {
		return ""
	}
	return keyPrefix + user + ":" + collection
}
