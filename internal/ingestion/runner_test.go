package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"btc-forecast/internal/domain"
	"btc-forecast/internal/storage/memory"
)

// stubSource records the requested window and replays canned rows.
type stubSource struct {
	rows      []domain.RawCandle
	err       error
	lastStart time.Time
	lastEnd   time.Time
	calls     int
}

func (s *stubSource) Fetch(_ context.Context, start, end time.Time) ([]domain.RawCandle, error) {
	s.calls++
	s.lastStart = start
	s.lastEnd = end
	return s.rows, s.err
}

func rawDay(day int, closePrice float64) domain.RawCandle {
	date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	price := fmt.Sprintf("%f", closePrice)
	return domain.RawCandle{
		Date:   date.Format(domain.DateFormat),
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: "1000",
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
}

func TestRunner_FirstRunBackfillsFromFloor(t *testing.T) {
	source := &stubSource{rows: []domain.RawCandle{rawDay(1, 100), rawDay(2, 101)}}
	marketStore := memory.NewMarketDataStore()
	archive := memory.NewCandleArchiveStore()

	runner := NewRunner(RunnerOptions{
		Source:      source,
		MarketStore: marketStore,
		Archive:     archive,
		Logger:      zerolog.Nop(),
		Now:         fixedNow,
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !source.lastStart.Equal(DefaultStartDate) {
		t.Errorf("empty store must backfill from %v, got %v", DefaultStartDate, source.lastStart)
	}
	wantEnd := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	if !source.lastEnd.Equal(wantEnd) {
		t.Errorf("window end must be tomorrow, got %v", source.lastEnd)
	}
	if result.Fetched != 2 || result.Stored != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	candles, err := marketStore.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Errorf("expected 2 candles in market store, got %d", len(candles))
	}
	archived, err := archive.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("expected 2 candles in archive, got %d", len(archived))
	}
}

func TestRunner_IncrementalWindowFromMaxDate(t *testing.T) {
	source := &stubSource{rows: []domain.RawCandle{rawDay(5, 105)}}
	marketStore := memory.NewMarketDataStore()
	archive := memory.NewCandleArchiveStore()

	runner := NewRunner(RunnerOptions{
		Source:      source,
		MarketStore: marketStore,
		Archive:     archive,
		Logger:      zerolog.Nop(),
		Now:         fixedNow,
	})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second run on the same Runner: the window start must be recomputed
	// from the store, not remembered from construction time.
	source.rows = []domain.RawCandle{rawDay(5, 106), rawDay(6, 107)}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	wantStart := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !source.lastStart.Equal(wantStart) {
		t.Errorf("second run must start at stored max date %v, got %v", wantStart, source.lastStart)
	}

	// The day-5 revision replaced the original row.
	candles, err := marketStore.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles after revision, got %d", len(candles))
	}
	if candles[0].Close != 106 {
		t.Errorf("expected revised close 106, got %f", candles[0].Close)
	}
}

func TestRunner_EmptyWindowIsNotAnError(t *testing.T) {
	source := &stubSource{}
	runner := NewRunner(RunnerOptions{
		Source:      source,
		MarketStore: memory.NewMarketDataStore(),
		Archive:     memory.NewCandleArchiveStore(),
		Logger:      zerolog.Nop(),
		Now:         fixedNow,
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fetched != 0 || result.Stored != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRunner_SourceFailurePropagates(t *testing.T) {
	sourceErr := errors.New("upstream down")
	runner := NewRunner(RunnerOptions{
		Source:      &stubSource{err: sourceErr},
		MarketStore: memory.NewMarketDataStore(),
		Archive:     memory.NewCandleArchiveStore(),
		Logger:      zerolog.Nop(),
		Now:         fixedNow,
	})

	_, err := runner.Run(context.Background())
	if !errors.Is(err, sourceErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestRunner_MalformedRowFailsRun(t *testing.T) {
	bad := rawDay(3, 100)
	bad.Close = "N/A"
	runner := NewRunner(RunnerOptions{
		Source:      &stubSource{rows: []domain.RawCandle{bad}},
		MarketStore: memory.NewMarketDataStore(),
		Archive:     memory.NewCandleArchiveStore(),
		Logger:      zerolog.Nop(),
		Now:         fixedNow,
	})

	_, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected normalization error")
	}
}
