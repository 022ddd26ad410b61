package scoring

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrCriterionOutOfRange = errors.New("criterion out of range")
	ErrMalformedBreakdown  = errors.New("malformed breakdown")
)
