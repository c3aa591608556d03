package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/MK023/TorinoParking/internal/domain"

	"github.com/rs/zerolog"
	"gopkg.in/guregu/null.v4"
)

// ErrFeedFormat marks a payload whose envelope structure cannot be located.
// Row-level problems never produce it; they only drop the affected row.
var ErrFeedFormat = errors.New("unexpected 5T feed format")

// envelope mirrors the 5T XML: <traffic_data><PK_data .../>...</traffic_data>.
// A single reading arrives as one PK_data element; encoding/xml collects it
// into a one-element slice either way.
type envelope struct {
	XMLName xml.Name   `xml:"traffic_data"`
	Entries []feedItem `xml:"PK_data"`
}

// feedItem keeps every attribute as a string so one uncoercible row cannot
// fail the batch decode.
type feedItem struct {
	ID       string `xml:"ID,attr"`
	Name     string `xml:"Name,attr"`
	Status   string `xml:"status,attr"`
	Total    string `xml:"Total,attr"`
	Free     string `xml:"Free,attr"`
	Tendence string `xml:"tendence,attr"`
	Lat      string `xml:"lat,attr"`
	Lng      string `xml:"lng,attr"`
}

type Parser struct {
	logger zerolog.Logger
}

func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseResponse turns a raw feed payload into domain records. Malformed
// entries are logged with their raw attributes and skipped; only a missing
// envelope is a hard failure.
func (p *Parser) ParseResponse(raw []byte) ([]domain.Parking, error) {
	var env envelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedFormat, err)
	}
	if len(env.Entries) == 0 {
		return nil, fmt.Errorf("%w: no PK_data entries in envelope", ErrFeedFormat)
	}

	parkings := make([]domain.Parking, 0, len(env.Entries))
	for _, item := range env.Entries {
		parking, err := parseEntry(item)
		if err != nil {
			p.logger.Warn().
				Err(err).
				Str("raw_id", item.ID).
				Str("raw_name", item.Name).
				Str("raw_free", item.Free).
				Str("raw_lat", item.Lat).
				Str("raw_lng", item.Lng).
				Msg("parse_parking_failed")
			continue
		}
		parkings = append(parkings, parking)
	}
	return parkings, nil
}

func parseEntry(item feedItem) (domain.Parking, error) {
	id, err := strconv.Atoi(item.ID)
	if err != nil {
		return domain.Parking{}, fmt.Errorf("invalid ID %q: %w", item.ID, err)
	}
	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return domain.Parking{}, fmt.Errorf("invalid lat %q: %w", item.Lat, err)
	}
	lng, err := strconv.ParseFloat(item.Lng, 64)
	if err != nil {
		return domain.Parking{}, fmt.Errorf("invalid lng %q: %w", item.Lng, err)
	}

	status, err := atoiDefault(item.Status, 0)
	if err != nil {
		return domain.Parking{}, fmt.Errorf("invalid status %q: %w", item.Status, err)
	}
	total, err := atoiDefault(item.Total, 0)
	if err != nil {
		return domain.Parking{}, fmt.Errorf("invalid total %q: %w", item.Total, err)
	}

	// Negative free counts are clamped to zero here at the boundary.
	// Over-capacity counts pass through untouched; downstream consumers
	// see the raw anomalous reading in history.
	var freeSpots null.Int
	if item.Free != "" {
		free, err := strconv.Atoi(item.Free)
		if err != nil {
			return domain.Parking{}, fmt.Errorf("invalid free %q: %w", item.Free, err)
		}
		if free < 0 {
			free = 0
		}
		freeSpots = null.IntFrom(int64(free))
	}

	var tendence null.Int
	if item.Tendence != "" {
		t, err := strconv.Atoi(item.Tendence)
		if err != nil {
			return domain.Parking{}, fmt.Errorf("invalid tendence %q: %w", item.Tendence, err)
		}
		tendence = null.IntFrom(int64(t))
	}

	return domain.Parking{
		ID:         id,
		Name:       item.Name,
		Status:     status,
		TotalSpots: total,
		FreeSpots:  freeSpots,
		Tendence:   tendence,
		Lat:        lat,
		Lng:        lng,
	}, nil
}

func atoiDefault(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
