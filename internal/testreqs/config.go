// Package testreqs drives batched scoring requests against a running
// truscore service and verifies the responses.
package testreqs

import "time"

// Config holds configuration for the request test.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumProducts  int           // Number of distinct product ids to generate
	NumBatches   int           // Number of batches to submit
	BatchSize    int           // Ids per batch
	RepeatRatio  float64       // Fraction of each batch drawn from already-used ids
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Enable verbose logging
}

// ScoreRequest mirrors the wire schema for POST /score.
type ScoreRequest struct {
	Query []string `json:"query"`
}

// ScoreResponse mirrors the wire schema for the /score reply.
type ScoreResponse struct {
	Response []*float64 `json:"response"`
}

// Stats holds test statistics.
type Stats struct {
	BatchesSubmitted  int
	BatchesSucceeded  int
	BatchesFailed     int
	ItemsSubmitted    int
	ItemsScored       int
	ItemsAbsent       int
	AlignmentErrors   int
	OutOfRangeScores  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
