package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"
)

type fakeFeed struct {
	parkings []domain.Parking
	err      error
	calls    int
}

func (f *fakeFeed) FetchAll(ctx context.Context) ([]domain.Parking, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.parkings, nil
}

// fakeCache stores decoded values directly; the service layer never
// depends on the wire encoding.
type fakeCache struct {
	data     map[string]domain.ParkingListResponse
	etags    map[string]string
	sets     int
	failSets bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:  make(map[string]domain.ParkingListResponse),
		etags: make(map[string]string),
	}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) bool {
	stored, ok := c.data[key]
	if !ok {
		return false
	}
	*dest.(*domain.ParkingListResponse) = stored
	return true
}

func (c *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.failSets {
		return
	}
	c.data[key] = value.(domain.ParkingListResponse)
}

func (c *fakeCache) SetWithETag(ctx context.Context, key string, value any, ttl time.Duration) string {
	if c.failSets {
		return ""
	}
	c.sets++
	c.data[key] = value.(domain.ParkingListResponse)
	c.etags[key] = fmt.Sprintf("etag-%04d", c.sets)
	return c.etags[key]
}

func (c *fakeCache) GetETag(ctx context.Context, key string) string {
	return c.etags[key]
}

func (c *fakeCache) Delete(ctx context.Context, key string) {
	delete(c.data, key)
	delete(c.etags, key)
}

func (c *fakeCache) Ping(ctx context.Context) bool { return true }

func (c *fakeCache) Info(ctx context.Context) map[string]any { return map[string]any{} }

type fakeParkingRepo struct {
	nearby    []domain.NearbyParking
	nearbyErr error
	upserted  []domain.Parking
}

func (r *fakeParkingRepo) UpsertAll(ctx context.Context, parkings []domain.Parking) (int, error) {
	r.upserted = append(r.upserted, parkings...)
	return len(parkings), nil
}

func (r *fakeParkingRepo) FindNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int) ([]domain.NearbyParking, error) {
	if r.nearbyErr != nil {
		return nil, r.nearbyErr
	}
	return r.nearby, nil
}

type fakeSnapshotRepo struct {
	history    []domain.Snapshot
	historyErr error

	lastParkingID int
	lastHours     int
}

func (r *fakeSnapshotRepo) StoreBatch(ctx context.Context, parkings []domain.Parking, recordedAt time.Time) (int, error) {
	return len(parkings), nil
}

func (r *fakeSnapshotRepo) FindHistory(ctx context.Context, parkingID int, hours int) ([]domain.Snapshot, error) {
	r.lastParkingID = parkingID
	r.lastHours = hours
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.history, nil
}

func (r *fakeSnapshotRepo) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	return 0, nil
}

type fakeKeyRepo struct {
	digests    map[string]string
	digestsErr error
	findCalls  int

	created *domain.ApiKey
	keys    []domain.ApiKey
	touched []string
	revoked []int64
}

func (r *fakeKeyRepo) Create(ctx context.Context, key *domain.ApiKey) (*domain.ApiKey, error) {
	stored := *key
	stored.ID = 1
	stored.IsActive = true
	stored.CreatedAt = time.Now().UTC()
	r.created = &stored
	return &stored, nil
}

func (r *fakeKeyRepo) FindActiveDigests(ctx context.Context) (map[string]string, error) {
	r.findCalls++
	if r.digestsErr != nil {
		return nil, r.digestsErr
	}
	return r.digests, nil
}

func (r *fakeKeyRepo) FindAll(ctx context.Context) ([]domain.ApiKey, error) {
	return r.keys, nil
}

func (r *fakeKeyRepo) Revoke(ctx context.Context, id int64) error {
	r.revoked = append(r.revoked, id)
	return nil
}

func (r *fakeKeyRepo) TouchLastUsed(ctx context.Context, digest string) error {
	r.touched = append(r.touched, digest)
	return nil
}
