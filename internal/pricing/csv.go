package pricing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// quoteRow mirrors one row of a contract price file.
type quoteRow struct {
	Date         string  `csv:"Date"`
	Open         float64 `csv:"Open"`
	High         float64 `csv:"High"`
	Low          float64 `csv:"Low"`
	Close        float64 `csv:"Close"`
	Volume       int64   `csv:"Volume"`
	OpenInterest int64   `csv:"OpenInterest"`
}

// CSVSource reads futures quotes from a directory of per-contract CSV
// files named by Globex code, e.g. ZQH25.csv.
type CSVSource struct {
	dir    string
	logger zerolog.Logger
}

// NewCSVSource creates a CSV-backed price source.
func NewCSVSource(dir string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{
		dir:    dir,
		logger: logger.With().Str("component", "csv_source").Logger(),
	}
}

// Price returns the contract's last close at or before the as-of date.
// Expired contracts are read no later than their delivery month's end.
func (s *CSVSource) Price(ctx context.Context, month models.ContractMonth, asOf time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	symbol := month.Symbol()
	quotes, err := s.ReadContract(symbol)
	if err != nil {
		return 0, err
	}

	cutoff := priceCutoff(month, asOf)
	price := 0.0
	found := false
	for _, q := range quotes {
		if q.Date.After(cutoff) {
			break
		}
		price = q.Close
		found = true
	}

	if !found {
		return 0, apperrors.NewPriceError(symbol, asOf, apperrors.ErrPriceNotFound)
	}

	s.logger.Debug().
		Str("contract", symbol).
		Str("cutoff", cutoff.Format("2006-01-02")).
		Float64("close", price).
		Msg("Price read from CSV")
	return price, nil
}

// ReadContract reads and sorts the full quote history of a contract.
func (s *CSVSource) ReadContract(symbol string) ([]models.FuturesQuote, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewPriceError(symbol, time.Time{}, apperrors.ErrPriceNotFound)
		}
		return nil, apperrors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var rows []quoteRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.Wrapf(err, "parsing %s", path)
	}

	quotes := make([]models.FuturesQuote, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, apperrors.Wrapf(err, "parsing date %q in %s", r.Date, path)
		}
		quotes = append(quotes, models.FuturesQuote{
			Symbol:       symbol,
			Date:         date,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			OpenInterest: r.OpenInterest,
		})
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Date.Before(quotes[j].Date)
	})
	return quotes, nil
}
