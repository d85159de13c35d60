package timezone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"docconnect/backend/internal/domain"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, zone string, ttl time.Duration) error
}

type namer interface {
	Name(coord domain.GeoCoordinate) (string, error)
}

// CachingResolver remembers zone names per coordinate. The polygon lookup is
// deterministic, so a hit and a miss always resolve to the same location.
type CachingResolver struct {
	inner namer
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachingResolver(inner namer, cache Cache, ttl time.Duration, log *slog.Logger) *CachingResolver {
	if log == nil {
		log = slog.Default()
	}
	return &CachingResolver{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   log.With(slog.String("component", "timezone.cache")),
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error) {
	key := cacheKey(coord)

	name, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("zone cache read failed", slog.Any("err", err), slog.String("key", key))
	}
	if ok && name != "" {
		return loadLocation(name)
	}

	name, err = r.inner.Name(coord)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, name, r.ttl); err != nil {
		r.log.Warn("zone cache write failed", slog.Any("err", err), slog.String("key", key))
	}
	return loadLocation(name)
}

// cacheKey keeps the full stored precision of numeric(9,6) columns so two
// distinct practice locations never share an entry.
func cacheKey(coord domain.GeoCoordinate) string {
	return coord.Latitude.StringFixed(6) + "," + coord.Longitude.StringFixed(6)
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "docconnect:tz:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, zone string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, zone, ttl).Err()
}

func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("timezone: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("timezone: ping redis: %w", err)
	}
	return client, nil
}
