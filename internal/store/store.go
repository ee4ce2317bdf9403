// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"fedwatch/internal/models"
)

// DataStore defines the interface for quote and calendar persistence.
type DataStore interface {
	// Quotes
	SaveQuotes(ctx context.Context, quotes []models.FuturesQuote) error
	GetQuotes(ctx context.Context, symbol string, from, to time.Time) ([]models.FuturesQuote, error)
	GetClose(ctx context.Context, symbol string, cutoff time.Time) (float64, error)

	// Meeting calendar
	SaveMeetings(ctx context.Context, dates []time.Time) error
	GetMeetings(ctx context.Context) ([]time.Time, error)

	// Sync bookkeeping
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}
