package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache shares cached responses between instances. Entries expire
// through Redis TTLs; a sorted-set index ordered by write time trims the
// oldest keys once maxEntries is exceeded.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
	logger     *zap.Logger
	now        func() time.Time
}

// NewRedisCache creates a cache storing keys under prefix.
func NewRedisCache(client *redis.Client, prefix string, maxEntries int, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client:     client,
		prefix:     prefix + "cache:",
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *RedisCache) entryKey(key string) string { return c.prefix + "entry:" + key }
func (c *RedisCache) indexKey() string           { return c.prefix + "index" }

// Get returns the cached value; any Redis failure is logged and treated as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	key = NormalizeKey(key)
	val, err := c.client.Get(ctx, c.entryKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("redis cache get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

// Set writes the value with the cache TTL and trims the index to maxEntries.
func (c *RedisCache) Set(ctx context.Context, key, value string) {
	key = NormalizeKey(key)
	entryKey := c.entryKey(key)

	var card *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey, value, c.ttl)
		pipe.ZAdd(ctx, c.indexKey(), redis.Z{Score: float64(c.now().UnixNano()), Member: entryKey})
		card = pipe.ZCard(ctx, c.indexKey())
		return nil
	})
	if err != nil {
		c.logger.Warn("redis cache set failed", zap.String("key", key), zap.Error(err))
		return
	}

	excess := card.Val() - int64(c.maxEntries)
	if excess <= 0 {
		return
	}
	evicted, err := c.client.ZPopMin(ctx, c.indexKey(), excess).Result()
	if err != nil {
		c.logger.Warn("redis cache trim failed", zap.Error(err))
		return
	}
	keys := make([]string, 0, len(evicted))
	for _, z := range evicted {
		if member, ok := z.Member.(string); ok {
			keys = append(keys, member)
		}
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("redis cache eviction failed", zap.Error(err))
		}
	}
}

var _ ResponseCache = (*RedisCache)(nil)
