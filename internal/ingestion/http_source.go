package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"btc-forecast/internal/domain"
)

// HTTPSource fetches daily OHLCV history from a JSON-over-HTTP endpoint.
// The endpoint is expected to answer
//
//	GET {base}?symbol=BTC-USD&start=2016-01-01&end=2026-01-01
//
// with a JSON array of daily rows. Field values stay strings end to end;
// the provider's formatting quirks are normalization's problem.
type HTTPSource struct {
	baseURL    string
	symbol     string
	httpClient *http.Client
}

// NewHTTPSource creates a source for the given endpoint and symbol.
func NewHTTPSource(baseURL, symbol string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		symbol:  symbol,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Compile-time interface check.
var _ CandleSource = (*HTTPSource)(nil)

type candlePayload struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// Fetch retrieves all rows within [start, end).
func (s *HTTPSource) Fetch(ctx context.Context, start, end time.Time) ([]domain.RawCandle, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	q.Set("symbol", s.symbol)
	q.Set("start", start.UTC().Format(domain.DateFormat))
	q.Set("end", end.UTC().Format(domain.DateFormat))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch candles: unexpected status %d", resp.StatusCode)
	}

	var payload []candlePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode candle response: %w", err)
	}

	raw := make([]domain.RawCandle, len(payload))
	for i, p := range payload {
		raw[i] = domain.RawCandle{
			Date:   p.Date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}
	return raw, nil
}
