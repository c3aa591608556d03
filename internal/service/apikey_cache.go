package service

import (
	"context"
	"sync"
	"time"

	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
)

// ApiKeyCache keeps the active key digests in memory so the request hot
// path never hits the database. It refreshes from the repository once its
// content is older than refreshTTL; on a refresh failure the stale mapping
// keeps serving until the next attempt.
type ApiKeyCache struct {
	repo       repository.ApiKeyRepository
	salt       string
	refreshTTL time.Duration
	logger     zerolog.Logger

	mu          sync.RWMutex
	digests     map[string]string
	lastRefresh time.Time
}

func NewApiKeyCache(repo repository.ApiKeyRepository, salt string, refreshTTL time.Duration, logger zerolog.Logger) *ApiKeyCache {
	return &ApiKeyCache{
		repo:       repo,
		salt:       salt,
		refreshTTL: refreshTTL,
		logger:     logger,
		digests:    make(map[string]string),
	}
}

// Lookup hashes rawKey and returns its tier when the digest belongs to an
// active key. Successful lookups bump the key's last-used timestamp, best
// effort.
func (c *ApiKeyCache) Lookup(ctx context.Context, rawKey string) (string, bool) {
	c.ensureFresh(ctx)

	digest := HashAPIKey(c.salt, rawKey)
	c.mu.RLock()
	tier, ok := c.digests[digest]
	c.mu.RUnlock()

	if ok {
		if err := c.repo.TouchLastUsed(ctx, digest); err != nil {
			c.logger.Warn().Err(err).Msg("api_key_touch_error")
		}
	}
	return tier, ok
}

// Refresh reloads all active digests from the repository.
func (c *ApiKeyCache) Refresh(ctx context.Context) error {
	digests, err := c.repo.FindActiveDigests(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.digests = digests
	c.lastRefresh = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *ApiKeyCache) ensureFresh(ctx context.Context) {
	c.mu.RLock()
	stale := time.Since(c.lastRefresh) > c.refreshTTL
	c.mu.RUnlock()
	if !stale {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("api_key_cache_refresh_error")
	}
}
