package domain

import "time"

// Prediction is one model output row.
// Corresponds to the predictions table in PostgreSQL. Rows are append-only;
// the latest prediction is defined by created_at descending.
type Prediction struct {
	ID                 int64
	CreatedAt          time.Time
	ModelVersion       string
	PredictedReturnPct float64 // (exp(predicted log-return) - 1) * 100
}
