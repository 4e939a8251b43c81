package domain

import "time"

// FeatureRow represents engineered time-series features for one trading
// date. Rows are recomputed from the full candle history on every pipeline
// run and never persisted.
//
// Target is the 7-day forward log-return. It is nil on the single inference
// row (the most recent date, whose future close is not yet known).
type FeatureRow struct {
	Date       time.Time
	Close      float64
	Volume     float64
	LogReturn  float64  // ln(close[t] / close[t-1])
	RetLag1    float64  // log-return one day back
	RetLag7    float64  // log-return seven days back
	VolLag1    float64  // volume one day back
	MA30       float64  // 30-day trailing mean of close
	Std30      float64  // 30-day trailing sample std of log-return
	DistMA30   float64  // close/ma_30 - 1
	DailyRange float64  // (high-low)/close
	DayOfWeek  float64  // 0 = Monday ... 6 = Sunday
	Target     *float64 // ln(close[t+7]/close[t]), nil on the inference row
}

// Features returns the model input vector. Price levels (open, high, low)
// and the target are excluded; everything else the builder engineers is in.
func (r *FeatureRow) Features() []float64 {
	return []float64{
		r.Close,
		r.Volume,
		r.LogReturn,
		r.RetLag1,
		r.RetLag7,
		r.VolLag1,
		r.MA30,
		r.Std30,
		r.DistMA30,
		r.DailyRange,
		r.DayOfWeek,
	}
}

// FeatureCount is the width of the vector returned by Features.
const FeatureCount = 11
