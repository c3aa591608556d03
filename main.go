package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MK023/TorinoParking/internal/api"
	"github.com/MK023/TorinoParking/internal/api/handler"
	"github.com/MK023/TorinoParking/internal/api/middleware"
	"github.com/MK023/TorinoParking/internal/cache"
	"github.com/MK023/TorinoParking/internal/config"
	"github.com/MK023/TorinoParking/internal/feed"
	"github.com/MK023/TorinoParking/internal/ratelimit"
	"github.com/MK023/TorinoParking/internal/repository/postgresql"
	"github.com/MK023/TorinoParking/internal/scheduler"
	"github.com/MK023/TorinoParking/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Msg("configuration loaded")

	// 2. Database connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to database")
	}
	defer db.Close()
	logger.Info().Msg("database connected")

	// 3. Redis connection
	rdb := cache.NewRedisClient(cfg)
	defer rdb.Close()

	// 4. Shared HTTP client for the upstream feed
	feedHTTPClient := &http.Client{Timeout: cfg.FeedTimeout}

	// 5. Repositories and infrastructure services
	parkingRepo := postgresql.NewPgParkingRepository(db)
	snapshotRepo := postgresql.NewPgSnapshotRepository(db)
	detailRepo := postgresql.NewPgParkingDetailRepository(db)
	apiKeyRepo := postgresql.NewPgApiKeyRepository(db)

	feedClient := feed.NewClient(feedHTTPClient, cfg.FeedURL, logger)
	cacheService := cache.NewRedisCache(rdb, cfg, logger)
	limiter := ratelimit.NewLimiter(rdb)

	// 6. Application services
	parkingService := service.NewParkingService(feedClient, cacheService, parkingRepo, snapshotRepo, cfg.CacheTTL, logger)
	apiKeyService := service.NewApiKeyService(apiKeyRepo, cfg.HMACSalt)
	keyCache := service.NewApiKeyCache(apiKeyRepo, cfg.HMACSalt, time.Minute, logger)

	// 7. Background jobs
	sched := scheduler.New(logger)
	fetchJob := scheduler.NewFetchJob(feedClient, cacheService, parkingRepo, snapshotRepo, detailRepo, cfg.CacheTTL, logger)
	if err := sched.AddEvery(cfg.FetchInterval, "fetch_parking_data", fetchJob); err != nil {
		logger.Fatal().Err(err).Msg("could not register fetch job")
	}
	if err := sched.AddCron("0 * * * *", "cache_stats", scheduler.NewCacheStatsJob(cacheService, logger)); err != nil {
		logger.Fatal().Err(err).Msg("could not register cache stats job")
	}
	if err := sched.AddCron("0 3 * * *", "purge_old_snapshots", scheduler.NewPurgeJob(snapshotRepo, cfg.SnapshotRetentionDays, logger)); err != nil {
		logger.Fatal().Err(err).Msg("could not register purge job")
	}
	sched.Start()
	// Warm the cache right away instead of waiting for the first tick.
	go fetchJob.Run()

	// 8. HTTP router and middleware
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, keyCache, middleware.TierLimits{
		Anonymous:     cfg.RateLimitAnonymous,
		Authenticated: cfg.RateLimitAuthenticated,
		Premium:       cfg.RateLimitPremium,
	}, logger)

	router := api.SetupRouter(
		handler.NewParkingHandler(parkingService),
		handler.NewApiKeyHandler(apiKeyService),
		handler.NewHealthHandler(cacheService, db),
		rateLimitMw,
		keyCache,
		cfg.AdminAPIKey,
	)

	// 9. HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.ServerPort).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	// Graceful shutdown: stop accepting triggers and requests, then give
	// in-flight work a bounded window to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shut down")
	}

	jobsCtx := sched.Stop()
	select {
	case <-jobsCtx.Done():
		logger.Info().Msg("background jobs stopped")
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("background jobs did not stop in time")
	}

	logger.Info().Msg("server stopped")
}
