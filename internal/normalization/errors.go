package normalization

import "errors"

// ErrDataFormat is returned when a raw market data field cannot be coerced
// to a numeric value or a calendar date. The run must abort: a malformed
// upstream row is not recoverable downstream.
var ErrDataFormat = errors.New("malformed market data field")
