package scheduler

import (
	"context"
	"time"

	"github.com/MK023/TorinoParking/internal/cache"
	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
)

// FetchJob is one fetch cycle: pull the feed, parse it, enrich with static
// detail, refresh the serving cache, and persist master records plus one
// history row per reading. The cache write and the persistence writes are
// independent failure domains; either can fail without blocking the other.
type FetchJob struct {
	feed         repository.ParkingFeed
	cache        repository.CacheService
	parkingRepo  repository.ParkingRepository
	snapshotRepo repository.SnapshotRepository
	detailRepo   repository.ParkingDetailRepository
	cacheTTL     time.Duration
	cycleTimeout time.Duration
	logger       zerolog.Logger
}

func NewFetchJob(
	feed repository.ParkingFeed,
	cacheSvc repository.CacheService,
	parkingRepo repository.ParkingRepository,
	snapshotRepo repository.SnapshotRepository,
	detailRepo repository.ParkingDetailRepository,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *FetchJob {
	return &FetchJob{
		feed:         feed,
		cache:        cacheSvc,
		parkingRepo:  parkingRepo,
		snapshotRepo: snapshotRepo,
		detailRepo:   detailRepo,
		cacheTTL:     cacheTTL,
		cycleTimeout: 60 * time.Second,
		logger:       logger,
	}
}

func (j *FetchJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cycleTimeout)
	defer cancel()
	j.RunCycle(ctx)
}

func (j *FetchJob) RunCycle(ctx context.Context) {
	// A feed or parse failure terminates the cycle before any write; the
	// next scheduled tick retries from scratch.
	parkings, err := j.feed.FetchAll(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("fetch_cycle_feed_error")
		return
	}

	details, err := j.detailRepo.FindAll(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("fetch_cycle_detail_error")
		return
	}

	views := make([]domain.ParkingView, 0, len(parkings))
	for _, p := range parkings {
		var detail *domain.ParkingDetail
		if d, ok := details[p.ID]; ok {
			detail = &d
		}
		views = append(views, domain.NewParkingView(p, detail))
	}
	response := domain.NewParkingListResponse(views, domain.SourceEnriched)

	// Stage: serving cache. SetWithETag degrades to "" on a store error.
	if etag := j.cache.SetWithETag(ctx, cache.ParkingsKey, response, j.cacheTTL); etag == "" {
		j.logger.Error().Msg("fetch_cycle_cache_stage_failed")
	} else {
		j.logger.Info().Str("etag", etag).Int("count", len(views)).Msg("fetch_cycle_cache_updated")
	}

	// Stage: persistence. A failure here never rolls back the cache write.
	recordedAt := time.Now().UTC()
	if _, err := j.parkingRepo.UpsertAll(ctx, parkings); err != nil {
		j.logger.Error().Err(err).Msg("fetch_cycle_upsert_error")
		return
	}
	stored, err := j.snapshotRepo.StoreBatch(ctx, parkings, recordedAt)
	if err != nil {
		j.logger.Error().Err(err).Msg("fetch_cycle_snapshot_error")
		return
	}
	j.logger.Info().Int("snapshots", stored).Msg("fetch_cycle_done")
}
