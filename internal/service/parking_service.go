package service

import (
	"context"
	"time"

	"github.com/MK023/TorinoParking/internal/cache"
	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
	"gopkg.in/guregu/null.v4"
)

// ParkingService serves read requests from the conditional cache, falling
// back to a live feed fetch on a miss. History and spatial reads bypass the
// cache and hit persistence directly.
type ParkingService struct {
	feed         repository.ParkingFeed
	cache        repository.CacheService
	parkingRepo  repository.ParkingRepository
	snapshotRepo repository.SnapshotRepository
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

func NewParkingService(
	feed repository.ParkingFeed,
	cacheSvc repository.CacheService,
	parkingRepo repository.ParkingRepository,
	snapshotRepo repository.SnapshotRepository,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *ParkingService {
	return &ParkingService{
		feed:         feed,
		cache:        cacheSvc,
		parkingRepo:  parkingRepo,
		snapshotRepo: snapshotRepo,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// GetParkings returns the current snapshot and its fingerprint. The cached
// entry carries the detail-enriched views written by the fetch cycle; the
// live fallback serves bare feed data until the next cycle repopulates the
// cache.
func (s *ParkingService) GetParkings(ctx context.Context) (*domain.ParkingListResponse, string, error) {
	var cached domain.ParkingListResponse
	if s.cache.Get(ctx, cache.ParkingsKey, &cached) {
		return &cached, s.cache.GetETag(ctx, cache.ParkingsKey), nil
	}

	parkings, err := s.feed.FetchAll(ctx)
	if err != nil {
		return nil, "", err
	}

	views := make([]domain.ParkingView, 0, len(parkings))
	for _, p := range parkings {
		views = append(views, domain.NewParkingView(p, nil))
	}
	response := domain.NewParkingListResponse(views, domain.SourceLiveFeed)
	etag := s.cache.SetWithETag(ctx, cache.ParkingsKey, response, s.cacheTTL)
	return &response, etag, nil
}

// CurrentETag reports the fingerprint of the cached snapshot, or "" when
// nothing is cached.
func (s *ParkingService) CurrentETag(ctx context.Context) string {
	return s.cache.GetETag(ctx, cache.ParkingsKey)
}

// FilterParkings applies the optional availability and minimum-free-spots
// filters to a snapshot without mutating it.
func (s *ParkingService) FilterParkings(response *domain.ParkingListResponse, available *bool, minSpots *int) *domain.ParkingListResponse {
	filtered := response.Parkings
	if available != nil {
		kept := make([]domain.ParkingView, 0, len(filtered))
		for _, p := range filtered {
			if p.IsAvailable == *available {
				kept = append(kept, p)
			}
		}
		filtered = kept
	}
	if minSpots != nil {
		kept := make([]domain.ParkingView, 0, len(filtered))
		for _, p := range filtered {
			if p.FreeSpots.Valid && p.FreeSpots.Int64 >= int64(*minSpots) {
				kept = append(kept, p)
			}
		}
		filtered = kept
	}
	return &domain.ParkingListResponse{
		Total:      len(filtered),
		LastUpdate: response.LastUpdate,
		Source:     response.Source,
		Parkings:   filtered,
	}
}

func (s *ParkingService) GetParkingByID(ctx context.Context, id int) (*domain.ParkingView, error) {
	response, _, err := s.GetParkings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range response.Parkings {
		if response.Parkings[i].ID == id {
			return &response.Parkings[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *ParkingService) GetHistory(ctx context.Context, parkingID int, hours int) (*domain.HistoryResponse, error) {
	snapshots, err := s.snapshotRepo.FindHistory(ctx, parkingID, hours)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryResponse{
		ParkingID:      parkingID,
		Hours:          hours,
		TotalSnapshots: len(snapshots),
		Snapshots:      snapshots,
	}, nil
}

// GetNearby serves the spatial query from master records. The views carry
// no live reading; status is reported as out of service with no data.
func (s *ParkingService) GetNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int) (*domain.ParkingListResponse, error) {
	nearby, err := s.parkingRepo.FindNearby(ctx, lat, lng, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ParkingView, 0, len(nearby))
	for _, np := range nearby {
		views = append(views, domain.ParkingView{
			Parking: domain.Parking{
				ID:         np.ID,
				Name:       np.Name,
				Status:     domain.StatusOutOfService,
				TotalSpots: np.TotalSpots,
				Lat:        np.Lat,
				Lng:        np.Lng,
			},
			StatusLabel:         "no data",
			IsAvailable:         false,
			OccupancyPercentage: null.Float{},
			Detail:              np.Detail,
		})
	}
	response := domain.NewParkingListResponse(views, domain.SourceSpatial)
	return &response, nil
}
