package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/normalization"
	"btc-forecast/internal/observability"
	"btc-forecast/internal/storage"
)

// DefaultStartDate is the history floor used when the market data store is
// empty: the first run backfills from here.
var DefaultStartDate = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

// Runner performs one incremental ingestion pass: fetch, normalize, upsert
// into the market data store, append to the columnar archive.
type Runner struct {
	source      CandleSource
	marketStore storage.MarketDataStore
	archive     storage.CandleArchive
	now         func() time.Time
	logger      zerolog.Logger
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Source      CandleSource
	MarketStore storage.MarketDataStore
	Archive     storage.CandleArchive
	Logger      zerolog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		source:      opts.Source,
		marketStore: opts.MarketStore,
		archive:     opts.Archive,
		now:         now,
		logger:      opts.Logger,
	}
}

// Result summarizes one ingestion pass.
type Result struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Fetched     int
	Stored      int
}

// Run executes one ingestion pass. The fetch window is computed freshly on
// every invocation: from the store's max trading date (the history floor on
// an empty store) up to tomorrow, so a late-arriving revision of the most
// recent row is picked up and upserted.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start, err := r.windowStart(ctx)
	if err != nil {
		return nil, err
	}
	end := r.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	r.logger.Info().
		Str("start", start.Format(domain.DateFormat)).
		Str("end", end.Format(domain.DateFormat)).
		Msg("fetching candle history")

	raw, err := r.source.Fetch(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if len(raw) == 0 {
		r.logger.Info().Msg("no new candles in window")
		return &Result{WindowStart: start, WindowEnd: end}, nil
	}

	candles, err := normalization.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize candles: %w", err)
	}

	if err := r.marketStore.UpsertBulk(ctx, candles); err != nil {
		observability.RecordStoreError("market_data")
		return nil, fmt.Errorf("upsert market data: %w", err)
	}
	if err := r.archive.AppendBatch(ctx, candles); err != nil {
		observability.RecordStoreError("candle_archive")
		return nil, fmt.Errorf("append to archive: %w", err)
	}

	observability.RecordCandlesIngested(len(candles))
	r.logger.Info().
		Int("fetched", len(raw)).
		Int("stored", len(candles)).
		Msg("ingestion pass complete")

	return &Result{
		WindowStart: start,
		WindowEnd:   end,
		Fetched:     len(raw),
		Stored:      len(candles),
	}, nil
}

// windowStart resolves the incremental fetch start for this run.
func (r *Runner) windowStart(ctx context.Context) (time.Time, error) {
	max, err := r.marketStore.MaxDate(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return DefaultStartDate, nil
		}
		observability.RecordStoreError("market_data")
		return time.Time{}, fmt.Errorf("resolve ingestion window: %w", err)
	}
	return max, nil
}
