package model

import "errors"

// ErrInvalidTrainingData is returned when the training matrix still
// contains NaN or infinite values after feature building. That is an
// upstream contract violation and must surface as a hard failure rather
// than a retry.
var ErrInvalidTrainingData = errors.New("training data contains invalid values")
