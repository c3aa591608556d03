package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"
)

type pgSnapshotRepository struct {
	db *sql.DB
}

func NewPgSnapshotRepository(db *sql.DB) repository.SnapshotRepository {
	return &pgSnapshotRepository{db: db}
}

func (r *pgSnapshotRepository) StoreBatch(ctx context.Context, parkings []domain.Parking, recordedAt time.Time) (int, error) {
	if len(parkings) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO parking_snapshots (parking_id, free_spots, total_spots, status, tendence, recorded_at) VALUES `)
	args := make([]any, 0, len(parkings)*6)
	for i, p := range parkings {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, p.ID, p.FreeSpots, p.TotalSpots, p.Status, p.Tendence, recordedAt)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return 0, fmt.Errorf("SnapshotRepository.StoreBatch: %w", err)
	}
	return len(parkings), nil
}

func (r *pgSnapshotRepository) FindHistory(ctx context.Context, parkingID int, hours int) ([]domain.Snapshot, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	query := `SELECT id, parking_id, free_spots, total_spots, status, tendence, recorded_at
		FROM parking_snapshots
		WHERE parking_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, parkingID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("SnapshotRepository.FindHistory: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.Snapshot, 0)
	for rows.Next() {
		var s domain.Snapshot
		if err := rows.Scan(&s.ID, &s.ParkingID, &s.FreeSpots, &s.TotalSpots, &s.Status, &s.Tendence, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("SnapshotRepository.FindHistory (scanning row): %w", err)
		}
		s.RecordedAt = s.RecordedAt.In(time.UTC)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SnapshotRepository.FindHistory (rows error): %w", err)
	}
	return snapshots, nil
}

func (r *pgSnapshotRepository) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM parking_snapshots WHERE recorded_at < NOW() - make_interval(days => $1)`
	result, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, fmt.Errorf("SnapshotRepository.PurgeOlderThan: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("SnapshotRepository.PurgeOlderThan (rows affected): %w", err)
	}
	return deleted, nil
}
