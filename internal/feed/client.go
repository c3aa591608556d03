package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"

	"github.com/rs/zerolog"
)

// ErrFeedUnavailable marks a transport failure or non-success status from
// the upstream feed.
var ErrFeedUnavailable = errors.New("5T feed unavailable")

// Client fetches live readings from the 5T Torino Open Data endpoint.
// It implements repository.ParkingFeed.
type Client struct {
	httpClient *http.Client
	url        string
	parser     *Parser
	logger     zerolog.Logger
}

func NewClient(httpClient *http.Client, url string, logger zerolog.Logger) repository.ParkingFeed {
	return &Client{
		httpClient: httpClient,
		url:        url,
		parser:     NewParser(logger),
		logger:     logger,
	}
}

func (c *Client) FetchAll(ctx context.Context) ([]domain.Parking, error) {
	c.logger.Info().Str("url", c.url).Msg("five_t_fetch_start")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrFeedUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFeedUnavailable, err)
	}

	parkings, err := c.parser.ParseResponse(body)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Int("count", len(parkings)).Msg("five_t_fetch_done")
	return parkings, nil
}
