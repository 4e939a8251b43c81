package model

import (
	"math"

	"btc-forecast/internal/features"
)

// Forecast fits the ensemble on the table's training rows and scores the
// inference row. The returned value is the human-readable percentage
// return over the target horizon: (exp(predicted log-return) - 1) * 100.
func Forecast(table *features.Table, cfg Config) (float64, error) {
	training := table.TrainingRows()

	x := make([][]float64, len(training))
	y := make([]float64, len(training))
	for i, row := range training {
		x[i] = row.Features()
		y[i] = *row.Target
	}

	gbt := NewGBT(cfg)
	if err := gbt.Fit(x, y); err != nil {
		return 0, err
	}

	inference := table.InferenceRow()
	logRet := gbt.Predict(inference.Features())
	return (math.Exp(logRet) - 1) * 100, nil
}
