// Package normalization coerces raw upstream OHLCV rows into clean candles.
// It is the only place in the system that touches untyped market data.
package normalization

import (
	"fmt"
	"sort"

	"btc-forecast/internal/domain"
)

// Normalize converts raw rows into clean candles: every field is coerced,
// rows are deduplicated by trading date keeping the most recently ingested
// occurrence, and the result is sorted ascending by date.
func Normalize(raw []domain.RawCandle) ([]domain.Candle, error) {
	byDate := make(map[string]domain.Candle, len(raw))

	for i, r := range raw {
		c, err := coerceCandle(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		// Keep last occurrence per date.
		byDate[c.DateKey()] = c
	}

	candles := make([]domain.Candle, 0, len(byDate))
	for _, c := range byDate {
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return candles, nil
}

func coerceCandle(r domain.RawCandle) (domain.Candle, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.Candle{}, err
	}
	open, err := ParsePrice(r.Open)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("open: %w", err)
	}
	high, err := ParsePrice(r.High)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("high: %w", err)
	}
	low, err := ParsePrice(r.Low)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("low: %w", err)
	}
	closePrice, err := ParsePrice(r.Close)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("close: %w", err)
	}
	volume, err := ParseVolume(r.Volume)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("volume: %w", err)
	}

	return domain.Candle{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
