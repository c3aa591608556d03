package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MK023/TorinoParking/internal/cache"
	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
)

func sampleParkings() []domain.Parking {
	return []domain.Parking{
		{ID: 1, Name: "Roma", Status: domain.StatusOperational, TotalSpots: 300, FreeSpots: null.IntFrom(120), Lat: 45.07, Lng: 7.68},
		{ID: 2, Name: "Valentino", Status: domain.StatusOperational, TotalSpots: 150, FreeSpots: null.IntFrom(0), Lat: 45.04, Lng: 7.69},
		{ID: 3, Name: "Lingotto", Status: domain.StatusOutOfService, TotalSpots: 400, FreeSpots: null.IntFrom(50), Lat: 45.03, Lng: 7.66},
	}
}

func newTestParkingService(feed *fakeFeed, c *fakeCache, pr *fakeParkingRepo, sr *fakeSnapshotRepo) *ParkingService {
	return NewParkingService(feed, c, pr, sr, 2*time.Minute, zerolog.Nop())
}

func TestGetParkingsCacheHit(t *testing.T) {
	c := newFakeCache()
	views := []domain.ParkingView{domain.NewParkingView(sampleParkings()[0], nil)}
	cached := domain.NewParkingListResponse(views, domain.SourceEnriched)
	c.SetWithETag(context.Background(), cache.ParkingsKey, cached, 0)

	feed := &fakeFeed{}
	svc := newTestParkingService(feed, c, &fakeParkingRepo{}, &fakeSnapshotRepo{})

	response, etag, err := svc.GetParkings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceEnriched, response.Source)
	assert.Equal(t, 1, response.Total)
	assert.NotEmpty(t, etag)
	assert.Zero(t, feed.calls, "a cache hit must not reach the upstream feed")
}

func TestGetParkingsCacheMissFallsBackToFeed(t *testing.T) {
	c := newFakeCache()
	feed := &fakeFeed{parkings: sampleParkings()}
	svc := newTestParkingService(feed, c, &fakeParkingRepo{}, &fakeSnapshotRepo{})

	response, etag, err := svc.GetParkings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, feed.calls)
	assert.Equal(t, domain.SourceLiveFeed, response.Source)
	assert.Equal(t, 3, response.Total)
	assert.NotEmpty(t, etag)

	// The fallback serves bare feed data, without detail enrichment.
	for _, v := range response.Parkings {
		assert.Nil(t, v.Detail)
	}

	// The fetched snapshot was written back for subsequent requests.
	assert.Equal(t, 1, c.sets)
}

func TestGetParkingsFeedError(t *testing.T) {
	feed := &fakeFeed{err: errors.New("upstream down")}
	svc := newTestParkingService(feed, newFakeCache(), &fakeParkingRepo{}, &fakeSnapshotRepo{})

	_, _, err := svc.GetParkings(context.Background())
	assert.Error(t, err)
}

func TestGetParkingsServesEvenWhenCacheWriteFails(t *testing.T) {
	c := newFakeCache()
	c.failSets = true
	feed := &fakeFeed{parkings: sampleParkings()}
	svc := newTestParkingService(feed, c, &fakeParkingRepo{}, &fakeSnapshotRepo{})

	response, etag, err := svc.GetParkings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, response.Total)
	assert.Empty(t, etag)
}

func TestFilterParkings(t *testing.T) {
	views := make([]domain.ParkingView, 0)
	for _, p := range sampleParkings() {
		views = append(views, domain.NewParkingView(p, nil))
	}
	response := domain.NewParkingListResponse(views, domain.SourceEnriched)
	svc := newTestParkingService(&fakeFeed{}, newFakeCache(), &fakeParkingRepo{}, &fakeSnapshotRepo{})

	yes, no := true, false
	onlyAvailable := svc.FilterParkings(&response, &yes, nil)
	require.Equal(t, 1, onlyAvailable.Total)
	assert.Equal(t, 1, onlyAvailable.Parkings[0].ID)

	unavailable := svc.FilterParkings(&response, &no, nil)
	assert.Equal(t, 2, unavailable.Total)

	minSpots := 100
	bigOnly := svc.FilterParkings(&response, nil, &minSpots)
	require.Equal(t, 1, bigOnly.Total)
	assert.Equal(t, 1, bigOnly.Parkings[0].ID)

	minSpots = 1000
	none := svc.FilterParkings(&response, &yes, &minSpots)
	assert.Equal(t, 0, none.Total)

	// The original response is untouched.
	assert.Equal(t, 3, response.Total)
	assert.Len(t, response.Parkings, 3)
}

func TestGetParkingByID(t *testing.T) {
	feed := &fakeFeed{parkings: sampleParkings()}
	svc := newTestParkingService(feed, newFakeCache(), &fakeParkingRepo{}, &fakeSnapshotRepo{})

	view, err := svc.GetParkingByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Valentino", view.Name)
	assert.Equal(t, "full", view.StatusLabel)

	_, err = svc.GetParkingByID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetHistory(t *testing.T) {
	now := time.Now().UTC()
	sr := &fakeSnapshotRepo{history: []domain.Snapshot{
		{FreeSpots: null.IntFrom(100), TotalSpots: 300, Status: 1, RecordedAt: now},
		{FreeSpots: null.IntFrom(110), TotalSpots: 300, Status: 1, RecordedAt: now.Add(-2 * time.Minute)},
	}}
	svc := newTestParkingService(&fakeFeed{}, newFakeCache(), &fakeParkingRepo{}, sr)

	history, err := svc.GetHistory(context.Background(), 1, 24)
	require.NoError(t, err)
	assert.Equal(t, 1, history.ParkingID)
	assert.Equal(t, 24, history.Hours)
	assert.Equal(t, 2, history.TotalSnapshots)
	assert.Equal(t, 1, sr.lastParkingID)
	assert.Equal(t, 24, sr.lastHours)
}

func TestGetHistoryUnknownParking(t *testing.T) {
	sr := &fakeSnapshotRepo{history: []domain.Snapshot{}}
	svc := newTestParkingService(&fakeFeed{}, newFakeCache(), &fakeParkingRepo{}, sr)

	history, err := svc.GetHistory(context.Background(), 999, 24)
	require.NoError(t, err)
	assert.Equal(t, 0, history.TotalSnapshots)
}

func TestGetNearby(t *testing.T) {
	detail := &domain.ParkingDetail{ParkingID: 1, Address: "Corso Bolzano 10"}
	pr := &fakeParkingRepo{nearby: []domain.NearbyParking{
		{ID: 1, Name: "Roma", TotalSpots: 300, Lat: 45.07, Lng: 7.68, Detail: detail},
	}}
	svc := newTestParkingService(&fakeFeed{}, newFakeCache(), pr, &fakeSnapshotRepo{})

	response, err := svc.GetNearby(context.Background(), 45.07, 7.68, 1000, 10)
	require.NoError(t, err)
	require.Equal(t, 1, response.Total)
	assert.Equal(t, domain.SourceSpatial, response.Source)

	// Spatial results carry no live reading.
	view := response.Parkings[0]
	assert.Equal(t, "no data", view.StatusLabel)
	assert.False(t, view.IsAvailable)
	assert.False(t, view.OccupancyPercentage.Valid)
	assert.Same(t, detail, view.Detail)
}
