package domain

import (
	"math"
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	StatusOutOfService = 0
	StatusOperational  = 1
)

// Parking is one real-time occupancy reading from the 5T feed.
type Parking struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Status     int      `json:"status"`
	TotalSpots int      `json:"total_spots"`
	FreeSpots  null.Int `json:"free_spots"`
	Tendence   null.Int `json:"tendence"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
}

func (p Parking) StatusLabel() string {
	if p.Status == StatusOutOfService {
		return "out of service"
	}
	if !p.FreeSpots.Valid {
		return "no data"
	}
	if p.FreeSpots.Int64 == 0 {
		return "full"
	}
	return "open"
}

func (p Parking) IsAvailable() bool {
	return p.Status == StatusOperational && p.FreeSpots.Valid && p.FreeSpots.Int64 > 0
}

// OccupancyPercentage is defined only when a free count is present and the
// total is positive. The free count is clamped to [0, total] before the
// ratio so anomalous feed values never yield negative or >100% occupancy.
func (p Parking) OccupancyPercentage() null.Float {
	if !p.FreeSpots.Valid || p.TotalSpots == 0 {
		return null.Float{}
	}
	free := p.FreeSpots.Int64
	if free < 0 {
		free = 0
	}
	if free > int64(p.TotalSpots) {
		free = int64(p.TotalSpots)
	}
	pct := (1 - float64(free)/float64(p.TotalSpots)) * 100
	return null.FloatFrom(math.Round(pct*10) / 10)
}

// ParkingView is the externally served shape: the real-time reading plus
// its derived fields and the optional static detail enrichment.
type ParkingView struct {
	Parking
	StatusLabel         string         `json:"status_label"`
	IsAvailable         bool           `json:"is_available"`
	OccupancyPercentage null.Float     `json:"occupancy_percentage"`
	Detail              *ParkingDetail `json:"detail,omitempty"`
}

func NewParkingView(p Parking, detail *ParkingDetail) ParkingView {
	return ParkingView{
		Parking:             p,
		StatusLabel:         p.StatusLabel(),
		IsAvailable:         p.IsAvailable(),
		OccupancyPercentage: p.OccupancyPercentage(),
		Detail:              detail,
	}
}

// Source strings reported alongside each list response.
const (
	SourceLiveFeed = "5T Torino Open Data"
	SourceEnriched = "5T Torino Open Data + GTT"
	SourceSpatial  = "PostGIS spatial query"
)

type ParkingListResponse struct {
	Total      int           `json:"total"`
	LastUpdate time.Time     `json:"last_update"`
	Source     string        `json:"source"`
	Parkings   []ParkingView `json:"parkings"`
}

func NewParkingListResponse(views []ParkingView, source string) ParkingListResponse {
	return ParkingListResponse{
		Total:      len(views),
		LastUpdate: time.Now().UTC(),
		Source:     source,
		Parkings:   views,
	}
}

// NearbyParking is a master record returned by the spatial query. It carries
// no live reading; only the stored location and the joined static detail.
type NearbyParking struct {
	ID         int
	Name       string
	TotalSpots int
	Lat        float64
	Lng        float64
	Detail     *ParkingDetail
}
