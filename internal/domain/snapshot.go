package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Snapshot is one timestamped occupancy reading persisted for history
// queries. Rows are append-only; free counts are stored as read from the
// feed (over-capacity values included), only the negative clamp from parse
// time applies.
type Snapshot struct {
	ID         int64     `json:"-"`
	ParkingID  int       `json:"-"`
	FreeSpots  null.Int  `json:"free_spots"`
	TotalSpots int       `json:"total_spots"`
	Status     int       `json:"status"`
	Tendence   null.Int  `json:"tendence"`
	RecordedAt time.Time `json:"recorded_at"`
}

type HistoryResponse struct {
	ParkingID      int        `json:"parking_id"`
	Hours          int        `json:"hours"`
	TotalSnapshots int        `json:"total_snapshots"`
	Snapshots      []Snapshot `json:"snapshots"`
}
