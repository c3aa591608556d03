package handler

import (
	"database/sql"
	"net/http"

	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	cache repository.CacheService
	db    *sql.DB
}

func NewHealthHandler(cacheSvc repository.CacheService, db *sql.DB) *HealthHandler {
	return &HealthHandler{cache: cacheSvc, db: db}
}

// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	redisOK := h.cache.Ping(c.Request.Context())
	dbOK := h.db.PingContext(c.Request.Context()) == nil

	status := "healthy"
	code := http.StatusOK
	if !redisOK || !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"services": gin.H{
			"redis":      upDown(redisOK),
			"postgres":   upDown(dbOK),
			"five_t_api": "configured",
		},
	})
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
