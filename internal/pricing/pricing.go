// Package pricing supplies fed funds futures prices and the live target
// rate range from external sources.
package pricing

import (
	"context"
	"time"

	"fedwatch/internal/models"
)

// PriceSource supplies a futures price for a contract month as observed
// at a given as-of date. Implementations return an error wrapping
// ErrPriceNotFound when no quote exists at or before that date.
type PriceSource interface {
	Price(ctx context.Context, month models.ContractMonth, asOf time.Time) (float64, error)
}

// priceCutoff returns the last date a quote may be taken from for the
// contract. Some sources keep publishing placeholder rows after a
// contract expires, so expired contracts are read no later than their
// delivery month's final day.
func priceCutoff(month models.ContractMonth, asOf time.Time) time.Time {
	if last := month.LastDay(); last.Before(asOf) {
		return last
	}
	return asOf
}
