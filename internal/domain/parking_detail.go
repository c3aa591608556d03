package domain

import "gopkg.in/guregu/null.v4"

// ParkingDetail is the static enrichment for a parking (address, rates,
// payments). Seeded by out-of-band ETL, never written by the fetch cycle.
type ParkingDetail struct {
	ParkingID           int        `json:"-"`
	Address             string     `json:"address"`
	District            string     `json:"district"`
	Operator            string     `json:"operator"`
	Floors              null.Int   `json:"floors"`
	DisabledSpots       null.Int   `json:"disabled_spots"`
	IsCovered           bool       `json:"is_covered"`
	IsCustodied         bool       `json:"is_custodied"`
	Open24h             bool       `json:"open_24h"`
	HourlyRateDaytime   null.Float `json:"hourly_rate_daytime"`
	HourlyRateNighttime null.Float `json:"hourly_rate_nighttime"`
	DailyRate           null.Float `json:"daily_rate"`
	MonthlySubscription null.Float `json:"monthly_subscription"`
	BusLines            []string   `json:"bus_lines"`
	HasMetroAccess      bool       `json:"has_metro_access"`
	PaymentMethods      []string   `json:"payment_methods"`
	Cameras             null.Int   `json:"cameras"`
	Notes               string     `json:"notes"`
}
