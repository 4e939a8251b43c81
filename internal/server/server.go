// Package server exposes the latest stored prediction over HTTP.
//
// The endpoint is a thin read layer: it never runs the pipeline and never
// surfaces pipeline errors, only the state of the prediction store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"btc-forecast/internal/observability"
	"btc-forecast/internal/storage"
)

// Server serves the prediction read API.
type Server struct {
	echo        *echo.Echo
	predictions storage.PredictionStore
	logger      zerolog.Logger
}

// Options for creating a Server.
type Options struct {
	Predictions storage.PredictionStore
	Logger      zerolog.Logger
}

// New creates a Server with routes registered.
func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:        e,
		predictions: opts.Predictions,
		logger:      opts.Logger,
	}

	e.GET("/health", s.handleHealth)
	e.GET("/predictions/latest", s.handleLatestPrediction)
	e.GET("/metrics", echo.WrapHandler(observability.Handler()))

	return s
}

// Start serves on addr until the context is cancelled, then shuts down
// gracefully within the given timeout.
func (s *Server) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("http server started")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info().Msg("http server stopped")
	return nil
}

// Handler exposes the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type healthResponse struct {
	Status string `json:"status"`
}

type predictionResponse struct {
	ID           int64   `json:"id"`
	Value        float64 `json:"value"`
	ModelVersion string  `json:"model_version"`
	CreatedAt    string  `json:"created_at"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleLatestPrediction(c echo.Context) error {
	p, err := s.predictions.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{
				Detail: "no predictions found",
			})
		}
		observability.RecordStoreError("predictions")
		s.logger.Error().Err(err).Msg("prediction store query failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: "internal database error",
		})
	}

	observability.RecordPredictionServed()
	return c.JSON(http.StatusOK, predictionResponse{
		ID:           p.ID,
		Value:        p.PredictedReturnPct,
		ModelVersion: p.ModelVersion,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	})
}
