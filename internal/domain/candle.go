package domain

import "time"

// DateFormat is the canonical calendar date layout used across the system.
const DateFormat = "2006-01-02"

// RawCandle is one daily OHLCV row exactly as delivered by an upstream
// source. All fields are strings: prices may carry currency symbols and
// thousands separators ("$1,234.56"), volume may carry a K/M/B suffix.
type RawCandle struct {
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// Candle is one clean daily OHLCV row.
// Corresponds to market_data in PostgreSQL and candle_archive in ClickHouse.
type Candle struct {
	Date   time.Time // trading date, UTC midnight, unique key
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // integer-valued after normalization
}

// DateKey returns the candle's date in canonical form, used as the
// deduplication key.
func (c *Candle) DateKey() string {
	return c.Date.UTC().Format(DateFormat)
}
