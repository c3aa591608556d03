package middleware

import (
	"crypto/hmac"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireAdmin gates the administrative routes behind a shared secret,
// compared in constant time. An unconfigured secret rejects everything.
func RequireAdmin(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(AdminKeyHeader)
		if adminKey == "" || !hmac.Equal([]byte(provided), []byte(adminKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin key"})
			return
		}
		c.Next()
	}
}
