package memory

import (
	"context"
	"sync"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// PredictionStore is an in-memory implementation of storage.PredictionStore.
type PredictionStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []domain.Prediction
}

// NewPredictionStore creates a new in-memory prediction store.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// Insert appends a prediction and fills in its generated ID.
func (s *PredictionStore) Insert(_ context.Context, p *domain.Prediction) error {
	if p == nil || p.ModelVersion == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.data = append(s.data, *p)
	return nil
}

// Latest retrieves the most recent prediction by created_at.
func (s *PredictionStore) Latest(_ context.Context) (*domain.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := s.data[0]
	for _, p := range s.data[1:] {
		if p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}

	result := latest
	return &result, nil
}
