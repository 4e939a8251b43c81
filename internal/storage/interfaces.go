package storage

import (
	"context"
	"time"

	"btc-forecast/internal/domain"
)

// MarketDataStore provides access to the market_data table: one row per
// trading date, upserted rather than duplicated on re-ingestion.
type MarketDataStore interface {
	// UpsertBulk inserts candles, replacing any existing row with the same
	// trading date.
	UpsertBulk(ctx context.Context, candles []domain.Candle) error

	// GetAll retrieves every candle ordered by trading date ASC.
	GetAll(ctx context.Context) ([]domain.Candle, error)

	// GetSince retrieves candles with trading date >= since, ordered ASC.
	GetSince(ctx context.Context, since time.Time) ([]domain.Candle, error)

	// MaxDate returns the most recent stored trading date.
	// Returns ErrNotFound when the table is empty.
	MaxDate(ctx context.Context) (time.Time, error)
}

// CandleArchive is the columnar backup of ingested candles, used for
// replay/audit and as the pipeline's input source.
type CandleArchive interface {
	// AppendBatch writes a retrieved candle batch to the archive.
	AppendBatch(ctx context.Context, candles []domain.Candle) error

	// GetAll retrieves every archived candle ordered by trading date ASC.
	GetAll(ctx context.Context) ([]domain.Candle, error)

	// MaxDate returns the most recent archived trading date.
	// Returns ErrNotFound when the archive is empty.
	MaxDate(ctx context.Context) (time.Time, error)
}

// PredictionStore provides access to the predictions table. Rows are
// append-only; the latest prediction is defined by created_at DESC.
type PredictionStore interface {
	// Insert appends a prediction and fills in its generated ID.
	Insert(ctx context.Context, p *domain.Prediction) error

	// Latest retrieves the most recent prediction by created_at.
	// Returns ErrNotFound when no prediction exists.
	Latest(ctx context.Context) (*domain.Prediction, error)
}
