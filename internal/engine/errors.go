package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrInvalidScore = errors.New("aggregated score out of range")
	ErrTaskPanicked = errors.New("scoring task panicked")
)
