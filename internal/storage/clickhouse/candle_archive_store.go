package clickhouse

import (
	"context"
	"fmt"
	"time"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// CandleArchiveStore implements storage.CandleArchive using ClickHouse.
// The backing table is a ReplacingMergeTree keyed by trading_date: re-runs
// of ingestion over an overlapping window converge on the latest version
// of each row.
type CandleArchiveStore struct {
	conn *Conn
}

// NewCandleArchiveStore creates a new CandleArchiveStore.
func NewCandleArchiveStore(conn *Conn) *CandleArchiveStore {
	return &CandleArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleArchive = (*CandleArchiveStore)(nil)

// AppendBatch writes a retrieved candle batch to the archive.
func (s *CandleArchiveStore) AppendBatch(ctx context.Context, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candle_archive (
			trading_date, open_price, high_price, low_price, close_price, volume, ingested_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	for _, c := range candles {
		err = batch.Append(
			c.Date, c.Open, c.High, c.Low, c.Close, int64(c.Volume), now,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves every archived candle ordered by trading date ASC.
// FINAL collapses row versions left behind by overlapping ingestion runs.
func (s *CandleArchiveStore) GetAll(ctx context.Context) ([]domain.Candle, error) {
	query := `
		SELECT trading_date, open_price, high_price, low_price, close_price, volume
		FROM candle_archive FINAL
		ORDER BY trading_date ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		var c domain.Candle
		var volume int64

		if err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}

		c.Date = c.Date.UTC()
		c.Volume = float64(volume)
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}

	return candles, nil
}

// MaxDate returns the most recent archived trading date.
func (s *CandleArchiveStore) MaxDate(ctx context.Context) (time.Time, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM candle_archive`).Scan(&count); err != nil {
		return time.Time{}, fmt.Errorf("count archive rows: %w", err)
	}
	if count == 0 {
		return time.Time{}, storage.ErrNotFound
	}

	var max time.Time
	if err := s.conn.QueryRow(ctx, `SELECT max(trading_date) FROM candle_archive`).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("get max archive date: %w", err)
	}
	return max.UTC(), nil
}
