// Package ingestion retrieves daily OHLCV history from upstream sources
// and lands it in the market data store and the columnar archive.
package ingestion

import (
	"context"
	"time"

	"btc-forecast/internal/domain"
)

// CandleSource fetches raw daily OHLCV rows for [start, end).
// Implementations return rows as delivered; coercion and deduplication
// happen in normalization.
type CandleSource interface {
	Fetch(ctx context.Context, start, end time.Time) ([]domain.RawCandle, error)
}
