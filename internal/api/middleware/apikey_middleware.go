package middleware

import (
	"net/http"

	"github.com/MK023/TorinoParking/internal/service"

	"github.com/gin-gonic/gin"
)

const CallerTierKey = "callerTier"

// VerifyAPIKey rejects requests presenting an unknown or revoked key.
// Requests without a key pass through as anonymous callers.
func VerifyAPIKey(keyCache *service.ApiKeyCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.Next()
			return
		}
		tier, ok := keyCache.Lookup(c.Request.Context(), apiKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid API key"})
			return
		}
		c.Set(CallerTierKey, tier)
		c.Next()
	}
}
