package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// MarketDataStore implements storage.MarketDataStore using PostgreSQL.
type MarketDataStore struct {
	pool *Pool
}

// NewMarketDataStore creates a new MarketDataStore.
func NewMarketDataStore(pool *Pool) *MarketDataStore {
	return &MarketDataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketDataStore = (*MarketDataStore)(nil)

// UpsertBulk inserts candles atomically, replacing any existing row with
// the same trading date. The transaction rolls back on every error path.
func (s *MarketDataStore) UpsertBulk(ctx context.Context, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO market_data (
			trading_date, open_price, high_price, low_price, close_price, volume
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (trading_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	for _, c := range candles {
		_, err := tx.Exec(ctx, query,
			c.Date, c.Open, c.High, c.Low, c.Close, int64(c.Volume),
		)
		if err != nil {
			return fmt.Errorf("upsert candle %s: %w", c.DateKey(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves every candle ordered by trading date ASC.
func (s *MarketDataStore) GetAll(ctx context.Context) ([]domain.Candle, error) {
	query := `
		SELECT trading_date, open_price, high_price, low_price, close_price, volume
		FROM market_data
		ORDER BY trading_date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetSince retrieves candles with trading date >= since, ordered ASC.
func (s *MarketDataStore) GetSince(ctx context.Context, since time.Time) ([]domain.Candle, error) {
	query := `
		SELECT trading_date, open_price, high_price, low_price, close_price, volume
		FROM market_data
		WHERE trading_date >= $1
		ORDER BY trading_date ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("get candles since %s: %w", since.Format(domain.DateFormat), err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// MaxDate returns the most recent stored trading date.
func (s *MarketDataStore) MaxDate(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(trading_date) FROM market_data`

	var max *time.Time
	if err := s.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("get max trading date: %w", err)
	}
	if max == nil {
		return time.Time{}, storage.ErrNotFound
	}
	return max.UTC(), nil
}

// scanCandles scans multiple rows into a slice of Candle.
func scanCandles(rows pgx.Rows) ([]domain.Candle, error) {
	var candles []domain.Candle

	for rows.Next() {
		var c domain.Candle
		var volume int64

		err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &volume)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.Date = c.Date.UTC()
		c.Volume = float64(volume)
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
