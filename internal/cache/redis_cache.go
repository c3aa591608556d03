package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MK023/TorinoParking/internal/config"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ParkingsKey holds the latest merged snapshot served by the read API.
const ParkingsKey = "parking:all"

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		DialTimeout:  2 * time.Second,
	})
}

// RedisCache implements repository.CacheService over a shared Redis pool.
// Fingerprints are xxhash digests of the encoded payload: change detection
// only, no collision resistance required. Payload and fingerprint always
// travel in one transactional pipeline so a reader never observes one
// without the other.
type RedisCache struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	compress   bool
	threshold  int
	logger     zerolog.Logger
}

func NewRedisCache(rdb *redis.Client, cfg *config.Config, logger zerolog.Logger) repository.CacheService {
	return &RedisCache{
		rdb:        rdb,
		defaultTTL: cfg.CacheTTL,
		compress:   cfg.CacheCompression,
		threshold:  cfg.CacheCompressionThreshold,
		logger:     logger,
	}
}

func (c *RedisCache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return c.defaultTTL
	}
	return ttl
}

func (c *RedisCache) encode(value any) ([]byte, error) {
	return Encode(value, c.compress, c.threshold)
}

func fingerprint(encoded []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(encoded))
}

func etagKey(key string) string {
	return key + ":etag"
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_get_error")
		return false
	}
	if err := Decode(data, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_decode_error")
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	encoded, err := c.encode(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_encode_error")
		return
	}
	if err := c.rdb.Set(ctx, key, encoded, c.ttl(ttl)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_set_error")
	}
}

func (c *RedisCache) SetWithETag(ctx context.Context, key string, value any, ttl time.Duration) string {
	encoded, err := c.encode(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_encode_error")
		return ""
	}
	etag := fingerprint(encoded)

	expiry := c.ttl(ttl)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, encoded, expiry)
		pipe.Set(ctx, etagKey(key), etag, expiry)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_set_etag_error")
		return ""
	}
	return etag
}

func (c *RedisCache) GetETag(ctx context.Context, key string) string {
	etag, err := c.rdb.Get(ctx, etagKey(key)).Result()
	if err == redis.Nil {
		return ""
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_get_etag_error")
		return ""
	}
	return etag
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Del(ctx, etagKey(key))
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache_delete_error")
	}
}

func (c *RedisCache) Ping(ctx context.Context) bool {
	return c.rdb.Ping(ctx).Err() == nil
}

// Info returns memory usage and key count for the telemetry job.
func (c *RedisCache) Info(ctx context.Context) map[string]any {
	info := make(map[string]any)
	if mem, err := c.rdb.Info(ctx, "memory").Result(); err == nil {
		info["memory"] = mem
	}
	if keys, err := c.rdb.DBSize(ctx).Result(); err == nil {
		info["keys"] = keys
	}
	return info
}
