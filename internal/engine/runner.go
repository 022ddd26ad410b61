// Package engine contains the scoring pipeline for single products and
// the two-wave batch orchestrator built on top of it.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/okian/truscore/internal/adapters/catalog"
	"github.com/okian/truscore/internal/adapters/oracle"
	"github.com/okian/truscore/internal/domain/scoring"
	"github.com/okian/truscore/pkg/logger"
	"github.com/okian/truscore/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultOracleTimeout = 60 * time.Second
)

// Status tags the outcome of one scoring attempt.
type Status int

const (
	// StatusSuccess means a validated score was produced.
	StatusSuccess Status = iota
	// StatusNotFound means the product record does not exist. Terminal;
	// never retried.
	StatusNotFound
	// StatusInvalid means the attempt failed or produced an unusable
	// score. Eligible for one retry.
	StatusInvalid
)

// Outcome is the tagged result of one scoring attempt. Exactly one of
// Score (StatusSuccess) or Cause (StatusInvalid) is meaningful.
type Outcome struct {
	Status Status
	Score  float64
	Cause  error
}

// TaskRunner runs the scoring pipeline for a single product id.
type TaskRunner interface {
	Run(ctx context.Context, productID string) Outcome
}

// Runner implements TaskRunner: resolve the product record, invoke the
// oracle, aggregate the breakdown, validate the result. It holds no
// state and never touches the score cache.
type Runner struct {
	fetcher       catalog.Fetcher
	oracle        oracle.Oracle
	oracleTimeout time.Duration
	logger        logger.Logger
}

// RunnerOption applies a configuration option to the Runner.
type RunnerOption func(*Runner)

// WithOracleTimeout bounds each individual oracle invocation.
func WithOracleTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		if timeout > 0 {
			r.oracleTimeout = timeout
		}
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner over the given collaborators.
func NewRunner(fetcher catalog.Fetcher, o oracle.Oracle, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:       fetcher,
		oracle:        o,
		oracleTimeout: defaultOracleTimeout,
		logger:        logger.Get().Named("runner"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes one scoring attempt for a product id.
func (r *Runner) Run(ctx context.Context, productID string) Outcome {
	product, err := r.fetcher.Fetch(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			metrics.RecordProductNotFound()
			r.logger.Info(ctx, "product not found",
				logger.String("productID", productID),
			)
			return Outcome{Status: StatusNotFound}
		}
		// Lookup transport failures are retryable; only a confirmed
		// missing record terminates the item.
		return Outcome{Status: StatusInvalid, Cause: err}
	}

	oracleCtx, cancel := context.WithTimeout(ctx, r.oracleTimeout)
	defer cancel()

	review, err := r.oracle.Review(oracleCtx, product)
	if err != nil {
		return Outcome{Status: StatusInvalid, Cause: err}
	}

	score := scoring.Aggregate(review.Breakdown)
	if !scoring.ValidScore(score) {
		metrics.RecordInvalidScore()
		return Outcome{Status: StatusInvalid, Cause: ErrInvalidScore}
	}

	metrics.RecordScoreComputed()
	return Outcome{Status: StatusSuccess, Score: score}
}
