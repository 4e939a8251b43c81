// Package features engineers model inputs from daily candle history.
//
// Build is a pure function of its input: no I/O, no shared state, identical
// output for identical candle snapshots.
package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"btc-forecast/internal/domain"
)

const (
	// RollingWindow is the trailing observation count for ma_30 and std_30.
	// No expanding-window fallback: rows without 30 prior observations are
	// undefined.
	RollingWindow = 30

	// TargetHorizon is the forward-looking label distance in days.
	TargetHorizon = 7

	// MinCandles is the shortest deduplicated history that yields one
	// trainable row. The first fully defined feature row is index 30 (the
	// rolling std consumes log-returns 1..30) and the last labeled row is
	// index n-8, so one trainable row requires n >= 38.
	MinCandles = RollingWindow + TargetHorizon + 1
)

// Table is the feature builder output. The final row is always the
// inference row: fully populated features, nil target. Every other row
// carries a non-nil target and is eligible for training.
type Table struct {
	Rows []domain.FeatureRow
}

// TrainingRows returns the rows with a defined target.
func (t *Table) TrainingRows() []domain.FeatureRow {
	return t.Rows[:len(t.Rows)-1]
}

// InferenceRow returns the single row to be scored: the most recent date.
func (t *Table) InferenceRow() domain.FeatureRow {
	return t.Rows[len(t.Rows)-1]
}

// Build engineers the feature table from candle history.
//
// Candles are sorted ascending by date and deduplicated keeping the last
// occurrence per date, then per-date quantities are computed with strictly
// trailing windows and lags; the 7-day forward log-return target is the
// only forward-looking column. Rows whose window or lag extends beyond the
// available history are dropped, except the most recent row which is kept
// (nil target) for inference.
//
// Returns ErrInsufficientHistory when fewer than MinCandles distinct dates
// are available.
func Build(candles []domain.Candle) (*Table, error) {
	cs := dedupeSorted(candles)
	n := len(cs)
	if n < MinCandles {
		return nil, fmt.Errorf("%w: have %d candles, need %d", ErrInsufficientHistory, n, MinCandles)
	}

	logRet := make([]*float64, n)
	for t := 1; t < n; t++ {
		r := math.Log(cs[t].Close / cs[t-1].Close)
		logRet[t] = &r
	}

	// First index with every feature defined. ma_30 needs closes t-29..t,
	// std_30 needs log-returns t-29..t (log-return starts at index 1), and
	// ret_lag7 needs log-return at t-7.
	first := RollingWindow
	last := n - 1

	var rows []domain.FeatureRow
	for t := first; t <= last; t++ {
		hasTarget := t+TargetHorizon <= n-1
		if !hasTarget && t != last {
			// Undefined target and not the inference row: dropped.
			continue
		}

		closes := make([]float64, RollingWindow)
		rets := make([]float64, RollingWindow)
		for i := 0; i < RollingWindow; i++ {
			closes[i] = cs[t-RollingWindow+1+i].Close
			rets[i] = *logRet[t-RollingWindow+1+i]
		}
		ma30 := stat.Mean(closes, nil)
		std30 := stat.StdDev(rets, nil)

		row := domain.FeatureRow{
			Date:       cs[t].Date,
			Close:      cs[t].Close,
			Volume:     cs[t].Volume,
			LogReturn:  *logRet[t],
			RetLag1:    *logRet[t-1],
			RetLag7:    *logRet[t-TargetHorizon],
			VolLag1:    cs[t-1].Volume,
			MA30:       ma30,
			Std30:      std30,
			DistMA30:   cs[t].Close/ma30 - 1,
			DailyRange: (cs[t].High - cs[t].Low) / cs[t].Close,
			DayOfWeek:  float64(mondayIndexed(cs[t].Date)),
		}
		if hasTarget {
			target := math.Log(cs[t+TargetHorizon].Close / cs[t].Close)
			row.Target = &target
		}
		rows = append(rows, row)
	}

	// n >= MinCandles guarantees at least one trainable row and the
	// inference row, but guard against a degenerate slice anyway.
	if len(rows) < 2 || rows[len(rows)-1].Target != nil {
		return nil, fmt.Errorf("%w: %d usable rows after window warm-up", ErrInsufficientHistory, len(rows))
	}

	return &Table{Rows: rows}, nil
}

// dedupeSorted returns candles sorted ascending by date with exactly one
// row per date, keeping the last occurrence.
func dedupeSorted(candles []domain.Candle) []domain.Candle {
	byDate := make(map[string]int, len(candles))
	out := make([]domain.Candle, 0, len(candles))
	for _, c := range candles {
		key := c.DateKey()
		if i, ok := byDate[key]; ok {
			out[i] = c
			continue
		}
		byDate[key] = len(out)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// mondayIndexed maps time.Weekday (Sunday=0) to the 0=Monday convention.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
