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

type pgParkingDetailRepository struct {
	db *sql.DB
}

func NewPgParkingDetailRepository(db *sql.DB) repository.ParkingDetailRepository {
	return &pgParkingDetailRepository{db: db}
}

// detailRow scans the parking_details columns. Every field is nullable so
// the same row type works for the LEFT JOIN in the nearby query.
type detailRow struct {
	address             null.String
	district            null.String
	operator            null.String
	floors              null.Int
	disabledSpots       null.Int
	isCovered           null.Bool
	isCustodied         null.Bool
	open24h             null.Bool
	hourlyRateDaytime   null.Float
	hourlyRateNighttime null.Float
	dailyRate           null.Float
	monthlySubscription null.Float
	busLines            []string
	hasMetroAccess      null.Bool
	paymentMethods      []string
	cameras             null.Int
	notes               null.String
}

func (d detailRow) toDomain(parkingID int) domain.ParkingDetail {
	busLines := d.busLines
	if busLines == nil {
		busLines = []string{}
	}
	paymentMethods := d.paymentMethods
	if paymentMethods == nil {
		paymentMethods = []string{}
	}
	return domain.ParkingDetail{
		ParkingID:           parkingID,
		Address:             d.address.String,
		District:            d.district.String,
		Operator:            d.operator.String,
		Floors:              d.floors,
		DisabledSpots:       d.disabledSpots,
		IsCovered:           d.isCovered.Bool,
		IsCustodied:         d.isCustodied.Bool,
		Open24h:             d.open24h.Bool,
		HourlyRateDaytime:   d.hourlyRateDaytime,
		HourlyRateNighttime: d.hourlyRateNighttime,
		DailyRate:           d.dailyRate,
		MonthlySubscription: d.monthlySubscription,
		BusLines:            busLines,
		HasMetroAccess:      d.hasMetroAccess.Bool,
		PaymentMethods:      paymentMethods,
		Cameras:             d.cameras,
		Notes:               d.notes.String,
	}
}

func (r *pgParkingDetailRepository) FindAll(ctx context.Context) (map[int]domain.ParkingDetail, error) {
	query := `SELECT parking_id, address, district, operator, floors, disabled_spots,
			is_covered, is_custodied, open_24h,
			hourly_rate_daytime, hourly_rate_nighttime, daily_rate, monthly_subscription,
			bus_lines, has_metro_access, payment_methods, cameras, notes
		FROM parking_details`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingDetailRepository.FindAll: %w", err)
	}
	defer rows.Close()

	details := make(map[int]domain.ParkingDetail)
	for rows.Next() {
		var parkingID int
		var d detailRow
		if err := rows.Scan(
			&parkingID, &d.address, &d.district, &d.operator, &d.floors, &d.disabledSpots,
			&d.isCovered, &d.isCustodied, &d.open24h,
			&d.hourlyRateDaytime, &d.hourlyRateNighttime, &d.dailyRate, &d.monthlySubscription,
			pq.Array(&d.busLines), &d.hasMetroAccess, pq.Array(&d.paymentMethods), &d.cameras, &d.notes,
		); err != nil {
			return nil, fmt.Errorf("ParkingDetailRepository.FindAll (scanning row): %w", err)
		}
		details[parkingID] = d.toDomain(parkingID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingDetailRepository.FindAll (rows error): %w", err)
	}
	return details, nil
}
