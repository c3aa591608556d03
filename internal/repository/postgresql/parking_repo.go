package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/lib/pq"
	"gopkg.in/guregu/null.v4"
)

type pgParkingRepository struct {
	db *sql.DB
}

func NewPgParkingRepository(db *sql.DB) repository.ParkingRepository {
	return &pgParkingRepository{db: db}
}

func (r *pgParkingRepository) UpsertAll(ctx context.Context, parkings []domain.Parking) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ParkingRepository.UpsertAll (begin tx): %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO parkings (id, name, total_spots, lat, lng, location)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($5, $4), 4326)::geography)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			total_spots = EXCLUDED.total_spots,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			location = EXCLUDED.location`

	for _, p := range parkings {
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.TotalSpots, p.Lat, p.Lng); err != nil {
			return 0, fmt.Errorf("ParkingRepository.UpsertAll (parking %d): %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ParkingRepository.UpsertAll (commit): %w", err)
	}
	return len(parkings), nil
}

func (r *pgParkingRepository) FindNearby(ctx context.Context, lat, lng float64, radiusMeters, limit int) ([]domain.NearbyParking, error) {
	query := `SELECT p.id, p.name, p.total_spots, p.lat, p.lng,
			d.parking_id, d.address, d.district, d.operator, d.floors, d.disabled_spots,
			d.is_covered, d.is_custodied, d.open_24h,
			d.hourly_rate_daytime, d.hourly_rate_nighttime, d.daily_rate, d.monthly_subscription,
			d.bus_lines, d.has_metro_access, d.payment_methods, d.cameras, d.notes
		FROM parkings p
		LEFT JOIN parking_details d ON d.parking_id = p.id
		WHERE ST_DWithin(p.location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, lat, lng, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("ParkingRepository.FindNearby: %w", err)
	}
	defer rows.Close()

	results := make([]domain.NearbyParking, 0)
	for rows.Next() {
		var np domain.NearbyParking
		var detailID null.Int
		var d detailRow
		if err := rows.Scan(
			&np.ID, &np.Name, &np.TotalSpots, &np.Lat, &np.Lng,
			&detailID, &d.address, &d.district, &d.operator, &d.floors, &d.disabledSpots,
			&d.isCovered, &d.isCustodied, &d.open24h,
			&d.hourlyRateDaytime, &d.hourlyRateNighttime, &d.dailyRate, &d.monthlySubscription,
			pq.Array(&d.busLines), &d.hasMetroAccess, pq.Array(&d.paymentMethods), &d.cameras, &d.notes,
		); err != nil {
			return nil, fmt.Errorf("ParkingRepository.FindNearby (scanning row): %w", err)
		}
		if detailID.Valid {
			detail := d.toDomain(int(detailID.Int64))
			np.Detail = &detail
		}
		results = append(results, np)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingRepository.FindNearby (rows error): %w", err)
	}
	return results, nil
}
