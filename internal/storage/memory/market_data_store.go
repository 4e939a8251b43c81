package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// MarketDataStore is an in-memory implementation of storage.MarketDataStore.
type MarketDataStore struct {
	mu   sync.RWMutex
	data map[string]domain.Candle // keyed by trading date
}

// NewMarketDataStore creates a new in-memory market data store.
func NewMarketDataStore() *MarketDataStore {
	return &MarketDataStore{
		data: make(map[string]domain.Candle),
	}
}

// Compile-time interface check.
var _ storage.MarketDataStore = (*MarketDataStore)(nil)

// UpsertBulk inserts candles, replacing existing rows with the same date.
func (s *MarketDataStore) UpsertBulk(_ context.Context, candles []domain.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candles {
		if c.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		s.data[c.DateKey()] = c
	}
	return nil
}

// GetAll retrieves every candle ordered by trading date ASC.
func (s *MarketDataStore) GetAll(_ context.Context) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Candle, 0, len(s.data))
	for _, c := range s.data {
		result = append(result, c)
	}
	sortByDate(result)
	return result, nil
}

// GetSince retrieves candles with trading date >= since, ordered ASC.
func (s *MarketDataStore) GetSince(_ context.Context, since time.Time) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Candle
	for _, c := range s.data {
		if !c.Date.Before(since) {
			result = append(result, c)
		}
	}
	sortByDate(result)
	return result, nil
}

// MaxDate returns the most recent stored trading date.
func (s *MarketDataStore) MaxDate(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return time.Time{}, storage.ErrNotFound
	}

	var max time.Time
	for _, c := range s.data {
		if c.Date.After(max) {
			max = c.Date
		}
	}
	return max, nil
}

func sortByDate(candles []domain.Candle) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
}
