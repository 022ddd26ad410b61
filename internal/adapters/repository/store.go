// Package repository defines the score cache interface and errors.
package repository

import "context"

// Store provides read/write access to previously computed overall
// scores. Entries persist for the process lifetime; a later successful
// computation for the same id overwrites the earlier one.
type Store interface {
	// Get returns the cached score for a product id, if present.
	Get(ctx context.Context, productID string) (float64, bool)

	// Set stores the score for a product id, replacing any prior value.
	Set(ctx context.Context, productID string, score float64)

	// Len returns the number of cached entries.
	Len(ctx context.Context) int
}
