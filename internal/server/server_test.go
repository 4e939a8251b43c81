package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage"
	"btc-forecast/internal/storage/memory"
)

// failingPredictionStore simulates a broken backend.
type failingPredictionStore struct{}

func (failingPredictionStore) Insert(context.Context, *domain.Prediction) error {
	return errors.New("connection refused")
}

func (failingPredictionStore) Latest(context.Context) (*domain.Prediction, error) {
	return nil, errors.New("connection refused")
}

func newTestServer(predictions storage.PredictionStore) *Server {
	return New(Options{
		Predictions: predictions,
		Logger:      zerolog.Nop(),
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(memory.NewPredictionStore())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}

func TestLatestPrediction_Empty(t *testing.T) {
	s := newTestServer(memory.NewPredictionStore())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predictions/latest", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on empty store, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] != "no predictions found" {
		t.Errorf("unexpected detail: %v", body)
	}
}

func TestLatestPrediction_Found(t *testing.T) {
	predictions := memory.NewPredictionStore()
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	err := predictions.Insert(context.Background(), &domain.Prediction{
		CreatedAt:          created,
		ModelVersion:       "gbt-1.0.0",
		PredictedReturnPct: 2.37,
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	s := newTestServer(predictions)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predictions/latest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body predictionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != 1 {
		t.Errorf("expected id 1, got %d", body.ID)
	}
	if body.Value != 2.37 {
		t.Errorf("expected value 2.37, got %f", body.Value)
	}
	if body.ModelVersion != "gbt-1.0.0" {
		t.Errorf("unexpected model version %q", body.ModelVersion)
	}
	if body.CreatedAt != created.Format(time.RFC3339) {
		t.Errorf("expected created_at %s, got %s", created.Format(time.RFC3339), body.CreatedAt)
	}
}

func TestLatestPrediction_StoreError(t *testing.T) {
	s := newTestServer(failingPredictionStore{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predictions/latest", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store failure, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] != "internal database error" {
		t.Errorf("unexpected detail: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(memory.NewPredictionStore())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected prometheus exposition output")
	}
}

func TestStart_GracefulShutdown(t *testing.T) {
	s := newTestServer(memory.NewPredictionStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx, "127.0.0.1:0", time.Second)
	}()

	// Let the listener come up, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
