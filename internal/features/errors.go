package features

import "errors"

// ErrInsufficientHistory is returned when the candle history is too short
// to produce at least one trainable row plus the inference row. Callers
// must not proceed to training; the next scheduled run may succeed once
// more history accumulates.
var ErrInsufficientHistory = errors.New("insufficient candle history")
