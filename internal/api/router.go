package api

import (
	"github.com/MK023/TorinoParking/internal/api/handler"
	"github.com/MK023/TorinoParking/internal/api/middleware"
	"github.com/MK023/TorinoParking/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	parkingHandler *handler.ParkingHandler,
	apiKeyHandler *handler.ApiKeyHandler,
	healthHandler *handler.HealthHandler,
	rateLimitMw *middleware.RateLimitMiddleware,
	keyCache *service.ApiKeyCache,
	adminKey string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-API-Key, If-None-Match")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(rateLimitMw.Handle())

	r.GET("/health", healthHandler.Check)

	v1 := r.Group("/api/v1")
	{
		parkingRoutes := v1.Group("/parkings")
		parkingRoutes.Use(middleware.VerifyAPIKey(keyCache))
		{
			parkingRoutes.GET("", parkingHandler.GetParkings)
			parkingRoutes.GET("/nearby", parkingHandler.GetNearby)
			parkingRoutes.GET("/:id", parkingHandler.GetParkingByID)
			parkingRoutes.GET("/:id/history", parkingHandler.GetHistory)
		}

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.RequireAdmin(adminKey))
		{
			adminRoutes.POST("/keys", apiKeyHandler.CreateKey)
			adminRoutes.GET("/keys", apiKeyHandler.ListKeys)
			adminRoutes.DELETE("/keys/:id", apiKeyHandler.RevokeKey)
		}
	}
	return r
}
