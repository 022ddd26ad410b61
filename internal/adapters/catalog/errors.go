package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound     = errors.New("product not found")
	ErrLookupFailed = errors.New("product lookup failed")
)
