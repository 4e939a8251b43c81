package memory

import (
	"context"
	"sync"
	"time"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// CandleArchiveStore is an in-memory implementation of storage.CandleArchive.
// Mirrors the ReplacingMergeTree semantics of the ClickHouse backend: the
// latest appended version of each trading date wins.
type CandleArchiveStore struct {
	mu   sync.RWMutex
	data map[string]domain.Candle
}

// NewCandleArchiveStore creates a new in-memory candle archive.
func NewCandleArchiveStore() *CandleArchiveStore {
	return &CandleArchiveStore{
		data: make(map[string]domain.Candle),
	}
}

// Compile-time interface check.
var _ storage.CandleArchive = (*CandleArchiveStore)(nil)

// AppendBatch writes a candle batch to the archive.
func (s *CandleArchiveStore) AppendBatch(_ context.Context, candles []domain.Candle) error {
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

// GetAll retrieves every archived candle ordered by trading date ASC.
func (s *CandleArchiveStore) GetAll(_ context.Context) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Candle, 0, len(s.data))
	for _, c := range s.data {
		result = append(result, c)
	}
	sortByDate(result)
	return result, nil
}

// MaxDate returns the most recent archived trading date.
func (s *CandleArchiveStore) MaxDate(_ context.Context) (time.Time, error) {
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
