package services

import "errors"

// ErrInvalidInput marks caller errors rejected before any computation.
var ErrInvalidInput = errors.New("invalid input")

// ErrOracleUnavailable marks a failed round trip to the inference
// service. A malformed-but-successful response is not an error: it is
// returned as a degraded RailAnalysis instead.
var ErrOracleUnavailable = errors.New("inference service unavailable")
