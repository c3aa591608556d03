package scheduler

import (
	"context"
	"time"

	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
)

// CacheStatsJob logs cache-store telemetry. Non-critical: failures only
// show up as missing fields in the log line.
type CacheStatsJob struct {
	cache  repository.CacheService
	logger zerolog.Logger
}

func NewCacheStatsJob(cacheSvc repository.CacheService, logger zerolog.Logger) *CacheStatsJob {
	return &CacheStatsJob{cache: cacheSvc, logger: logger}
}

func (j *CacheStatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	j.logger.Info().Interface("stats", j.cache.Info(ctx)).Msg("cache_stats")
}

// PurgeJob deletes history rows past the retention age in one bulk
// statement.
type PurgeJob struct {
	snapshotRepo  repository.SnapshotRepository
	retentionDays int
	logger        zerolog.Logger
}

func NewPurgeJob(snapshotRepo repository.SnapshotRepository, retentionDays int, logger zerolog.Logger) *PurgeJob {
	return &PurgeJob{snapshotRepo: snapshotRepo, retentionDays: retentionDays, logger: logger}
}

func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := j.snapshotRepo.PurgeOlderThan(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error().Err(err).Msg("purge_snapshots_error")
		return
	}
	j.logger.Info().Int64("deleted", deleted).Msg("purge_snapshots_done")
}
