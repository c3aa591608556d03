package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// ParkingFeed pulls the current live readings from the upstream source.
type ParkingFeed interface {
	FetchAll(ctx context.Context) ([]domain.Parking, error)
}

// CacheService is the conditional serving cache. Every operation degrades
// to a safe default on a backing-store error (miss on read, no-op on
// write): the cache is an optimization, never a correctness dependency.
type CacheService interface {
	// Get decodes the cached payload into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	// SetWithETag writes payload and fingerprint atomically and returns the
	// fingerprint, or "" when the write failed.
	SetWithETag(ctx context.Context, key string, value any, ttl time.Duration) string
	GetETag(ctx context.Context, key string) string
	Delete(ctx context.Context, key string)
	Ping(ctx context.Context) bool
	// Info reports backing-store telemetry (memory, key count); best effort.
	Info(ctx context.Context) map[string]any
}

type ParkingRepository interface {
	// UpsertAll inserts or updates master records keyed by parking ID.
	UpsertAll(ctx context.Context, parkings []domain.Parking) (int, error)
	// FindNearby returns master records within radiusMeters of the point,
	// joined with their static detail. No matches yields an empty slice.
	FindNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int) ([]domain.NearbyParking, error)
}

type SnapshotRepository interface {
	// StoreBatch appends one history row per parking, all sharing recordedAt.
	StoreBatch(ctx context.Context, parkings []domain.Parking, recordedAt time.Time) (int, error)
	// FindHistory returns snapshots recorded within the last N hours, newest
	// first. An unknown parking ID yields an empty slice, not an error.
	FindHistory(ctx context.Context, parkingID int, hours int) ([]domain.Snapshot, error)
	// PurgeOlderThan bulk-deletes snapshots past the retention age and
	// returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

type ParkingDetailRepository interface {
	FindAll(ctx context.Context) (map[int]domain.ParkingDetail, error)
}

type ApiKeyRepository interface {
	Create(ctx context.Context, key *domain.ApiKey) (*domain.ApiKey, error)
	// FindActiveDigests returns digest -> tier for every active key.
	FindActiveDigests(ctx context.Context) (map[string]string, error)
	FindAll(ctx context.Context) ([]domain.ApiKey, error)
	Revoke(ctx context.Context, id int64) error
	TouchLastUsed(ctx context.Context, digest string) error
}
