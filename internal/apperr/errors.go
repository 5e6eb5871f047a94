package apperr

import "errors"

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when the input fails domain validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrAlreadyConverted is returned when converting a lead whose status is
// already terminal.
var ErrAlreadyConverted = errors.New("lead already converted")

// ErrAllocationExhausted is returned when tracking-number generation failed
// to find a unique value within the retry budget. Repeated collisions signal
// a systemic problem, not bad luck.
var ErrAllocationExhausted = errors.New("tracking number allocation exhausted")
