package postgres

import (
	"context"
	"fmt"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
)

// PredictionStore implements storage.PredictionStore using PostgreSQL.
type PredictionStore struct {
	pool *Pool
}

// NewPredictionStore creates a new PredictionStore.
func NewPredictionStore(pool *Pool) *PredictionStore {
	return &PredictionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// Insert appends a prediction and fills in its generated ID.
func (s *PredictionStore) Insert(ctx context.Context, p *domain.Prediction) error {
	if p == nil || p.ModelVersion == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO predictions (created_at, model_version, predicted_return_pct)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		p.CreatedAt, p.ModelVersion, p.PredictedReturnPct,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Latest retrieves the most recent prediction by created_at.
func (s *PredictionStore) Latest(ctx context.Context) (*domain.Prediction, error) {
	query := `
		SELECT id, created_at, model_version, predicted_return_pct
		FROM predictions
		ORDER BY created_at DESC
		LIMIT 1
	`

	var p domain.Prediction
	err := s.pool.QueryRow(ctx, query).Scan(
		&p.ID, &p.CreatedAt, &p.ModelVersion, &p.PredictedReturnPct,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest prediction: %w", err)
	}

	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
