package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/ratelimit"
	"github.com/MK023/TorinoParking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const APIKeyHeader = "X-API-Key"

// TierLimits maps each caller class to its per-window request budget.
type TierLimits struct {
	Anonymous     int
	Authenticated int
	Premium       int
}

// RateLimitMiddleware admits requests through the sliding-window limiter,
// with limits assigned by caller tier. Health and admin paths skip the
// limiter entirely; admin routes have their own shared-secret gate. A
// limiter store error fails open: availability of the read API wins over
// strict quota enforcement during a store outage.
type RateLimitMiddleware struct {
	limiter  *ratelimit.Limiter
	keyCache *service.ApiKeyCache
	limits   TierLimits
	logger   zerolog.Logger
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, keyCache *service.ApiKeyCache, limits TierLimits, logger zerolog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:  limiter,
		keyCache: keyCache,
		limits:   limits,
		logger:   logger,
	}
}

func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/api/v1/admin") {
			c.Next()
			return
		}

		identifier, maxRequests := m.classify(c)

		allowed, remaining, resetAt, err := m.limiter.Check(c.Request.Context(), identifier, maxRequests)
		if err != nil {
			m.logger.Warn().Err(err).Msg("rate_limit_store_error")
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			retryAfter := resetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Writer.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) classify(c *gin.Context) (string, int) {
	apiKey := c.GetHeader(APIKeyHeader)
	if apiKey != "" {
		tier, ok := m.keyCache.Lookup(c.Request.Context(), apiKey)
		if ok {
			prefix := apiKey
			if len(prefix) > 8 {
				prefix = prefix[:8]
			}
			if tier == domain.TierPremium {
				return "premium:" + prefix, m.limits.Premium
			}
			return "auth:" + prefix, m.limits.Authenticated
		}
	}
	return "ip:" + c.ClientIP(), m.limits.Anonymous
}
