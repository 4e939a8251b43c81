// Package pipeline runs one batch forecast: candle history in, one
// prediction row out.
//
// A run is single-threaded, stateless across invocations and performs no
// retries of its own; the invoking scheduler owns retry, concurrency and
// timeout policy.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/features"
	"btc-forecast/internal/model"
	"btc-forecast/internal/observability"
	"btc-forecast/internal/storage"
)

// ModelVersion tags every prediction row written by this pipeline.
const ModelVersion = "gbt-1.0.0"

// Pipeline coordinates one batch run:
// archive -> feature builder -> trainer/predictor -> prediction store.
type Pipeline struct {
	archive     storage.CandleArchive
	predictions storage.PredictionStore
	modelCfg    model.Config
	now         func() time.Time
	logger      zerolog.Logger
}

// Options for creating a Pipeline.
type Options struct {
	Archive     storage.CandleArchive
	Predictions storage.PredictionStore
	Logger      zerolog.Logger

	// ModelConfig overrides the ensemble parameters. Zero value means
	// model.DefaultConfig.
	ModelConfig model.Config

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	cfg := opts.ModelConfig
	if cfg.Trees == 0 {
		cfg = model.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		archive:     opts.Archive,
		predictions: opts.Predictions,
		modelCfg:    cfg,
		now:         now,
		logger:      opts.Logger,
	}
}

// RunResult contains results from one pipeline run.
type RunResult struct {
	CandlesLoaded      int
	TrainingRows       int
	PredictedReturnPct float64
	Prediction         *domain.Prediction
}

// Run executes the full batch: load candles from the columnar archive,
// build the feature table, fit the ensemble, score the inference row and
// append the prediction.
//
// Typed errors propagate unwrapped for the scheduler to act on:
// features.ErrInsufficientHistory means try again on a later window,
// model.ErrInvalidTrainingData is a contract violation and a hard failure.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	start := p.now()

	result, err := p.run(ctx)
	if err != nil {
		observability.RecordPipelineRun("error", p.now().Sub(start).Seconds())
		return nil, err
	}

	observability.RecordPipelineRun("success", p.now().Sub(start).Seconds())
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*RunResult, error) {
	candles, err := p.archive.GetAll(ctx)
	if err != nil {
		observability.RecordStoreError("candle_archive")
		return nil, fmt.Errorf("load candle history: %w", err)
	}
	p.logger.Info().Int("candles", len(candles)).Msg("loaded candle history")

	table, err := features.Build(candles)
	if err != nil {
		// Not enough history is expected early in the system's life:
		// warn and let the scheduler retry on the next window.
		p.logger.Warn().Err(err).Msg("feature build failed")
		return nil, err
	}

	trainingRows := len(table.TrainingRows())
	p.logger.Info().
		Int("training_rows", trainingRows).
		Str("inference_date", table.InferenceRow().Date.Format(domain.DateFormat)).
		Msg("feature table built")

	pct, err := model.Forecast(table, p.modelCfg)
	if err != nil {
		return nil, err
	}

	prediction := &domain.Prediction{
		CreatedAt:          p.now().UTC(),
		ModelVersion:       ModelVersion,
		PredictedReturnPct: pct,
	}
	if err := p.predictions.Insert(ctx, prediction); err != nil {
		observability.RecordStoreError("predictions")
		return nil, fmt.Errorf("store prediction: %w", err)
	}

	p.logger.Info().
		Float64("predicted_return_pct", pct).
		Str("model_version", ModelVersion).
		Int64("prediction_id", prediction.ID).
		Msg("forecast complete")

	return &RunResult{
		CandlesLoaded:      len(candles),
		TrainingRows:       trainingRows,
		PredictedReturnPct: pct,
		Prediction:         prediction,
	}, nil
}
