package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"btc-forecast/internal/domain"
)

// CSVSource reads daily OHLCV rows from a local CSV file with the header
// date,open,high,low,close,volume. Rows outside [start, end) are skipped
// by string comparison on the ISO date column, so no coercion happens here.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source backed by the given file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Compile-time interface check.
var _ CandleSource = (*CSVSource)(nil)

// Fetch reads all rows within [start, end).
func (s *CSVSource) Fetch(ctx context.Context, start, end time.Time) ([]domain.RawCandle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv source: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	startKey := start.UTC().Format(domain.DateFormat)
	endKey := end.UTC().Format(domain.DateFormat)

	var raw []domain.RawCandle
	for _, rec := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := strings.TrimSpace(rec[cols["date"]])
		if date < startKey || date >= endKey {
			continue
		}
		raw = append(raw, domain.RawCandle{
			Date:   date,
			Open:   rec[cols["open"]],
			High:   rec[cols["high"]],
			Low:    rec[cols["low"]],
			Close:  rec[cols["close"]],
			Volume: rec[cols["volume"]],
		})
	}
	return raw, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv source missing column %q", required)
		}
	}
	return cols, nil
}
