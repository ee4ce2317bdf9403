package pricing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// Target range limits became the policy instrument on December 16, 2008;
// before that FRED publishes a single target level series.
var targetRangeSince = time.Date(2008, time.December, 16, 0, 0, 0, 0, time.UTC)

const (
	seriesTargetLower  = "DFEDTARL"
	seriesTargetUpper  = "DFEDTARU"
	seriesTargetSingle = "DFEDTAR"
)

// FredClient fetches the federal funds target rate range from the FRED
// CSV endpoint.
type FredClient struct {
	baseURL      string
	httpClient   *http.Client
	maxRetryTime time.Duration
	logger       zerolog.Logger
}

// FredOptions holds options for creating a FRED client.
type FredOptions struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetryTime time.Duration
}

// NewFredClient creates a new FRED client.
func NewFredClient(opts FredOptions, logger zerolog.Logger) *FredClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetryTime == 0 {
		opts.MaxRetryTime = 30 * time.Second
	}

	return &FredClient{
		baseURL:      opts.BaseURL,
		httpClient:   &http.Client{Timeout: opts.Timeout},
		maxRetryTime: opts.MaxRetryTime,
		logger:       logger.With().Str("component", "fred_client").Logger(),
	}
}

// TargetRange returns the target rate range in force on the given date.
func (c *FredClient) TargetRange(ctx context.Context, date time.Time) (models.RateRange, error) {
	if date.Before(targetRangeSince) {
		rate, err := c.observation(ctx, seriesTargetSingle, date)
		if err != nil {
			return models.RateRange{}, err
		}
		return models.NewRateLevel(rate), nil
	}

	lower, err := c.observation(ctx, seriesTargetLower, date)
	if err != nil {
		return models.RateRange{}, err
	}
	upper, err := c.observation(ctx, seriesTargetUpper, date)
	if err != nil {
		return models.RateRange{}, err
	}

	c.logger.Debug().
		Str("date", date.Format("2006-01-02")).
		Float64("lower", lower).
		Float64("upper", upper).
		Msg("Target range fetched")
	return models.RateRange{Lower: lower, Upper: upper}, nil
}

// observation fetches a single daily observation of a FRED series,
// retrying transient failures with exponential backoff.
func (c *FredClient) observation(ctx context.Context, series string, date time.Time) (float64, error) {
	operation := func() (float64, error) {
		return c.fetchObservation(ctx, series, date)
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxRetryTime

	value, err := backoff.RetryWithData(operation, backoff.WithContext(strategy, ctx))
	if err != nil {
		return 0, apperrors.Wrapf(err, "fetching %s for %s", series, date.Format("2006-01-02"))
	}
	return value, nil
}

func (c *FredClient) fetchObservation(ctx context.Context, series string, date time.Time) (float64, error) {
	day := date.Format("2006-01-02")
	endpoint := fmt.Sprintf("%s?id=%s&cosd=%s&coed=%s",
		c.baseURL, url.QueryEscape(series), day, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fred returned status %d for %s", resp.StatusCode, series)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return 0, backoff.Permanent(err)
		}
		return 0, err
	}

	value, err := parseObservation(resp.Body, day)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	return value, nil
}

// parseObservation extracts the value for the requested day from a FRED
// CSV response of (date, value) rows.
func parseObservation(r io.Reader, day string) (float64, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, apperrors.Wrap(err, "parsing fred response")
	}

	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue // header
		}
		if record[0] != day {
			continue
		}
		if record[1] == "." {
			// FRED publishes "." for days without an observation.
			return 0, apperrors.Wrapf(apperrors.ErrRateUnavailable, "no observation for %s", day)
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return 0, apperrors.Wrapf(err, "parsing observation %q", record[1])
		}
		return value, nil
	}

	return 0, apperrors.Wrapf(apperrors.ErrRateUnavailable, "no observation for %s", day)
}
