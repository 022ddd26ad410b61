package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/truscore/internal/adapters/repository"
	"github.com/okian/truscore/pkg/logger"
	"github.com/okian/truscore/pkg/metrics"
)

// FallbackScore is the fixed neutral default assigned when both
// attempts to score a known-existing product fail.
const FallbackScore = 50.0

// Default orchestrator configuration constants.
const (
	defaultMaxConcurrency = 16
)

// Orchestrator answers ordered batches of product ids with positionally
// aligned scores. Per item: cache hit short-circuits; misses fan out
// concurrently (wave 1); items that fail wave 1 are retried exactly
// once after the whole wave settles (wave 2); items still failing get
// FallbackScore. Only a missing product record leaves a nil slot.
type Orchestrator struct {
	cache  repository.Store
	runner TaskRunner

	// maxConcurrency bounds each wave's fan-out; 0 means unbounded.
	maxConcurrency int

	inflight atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrency bounds how many scoring tasks a wave may run at
// once. Zero removes the bound.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxConcurrency = n
		}
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator over a score cache and a task runner.
func New(cache repository.Store, runner TaskRunner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:          cache,
		runner:         runner,
		maxConcurrency: defaultMaxConcurrency,
		logger:         logger.Get().Named("orchestrator"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Score answers a batch of product ids with a same-length, same-order
// slice of scores. A nil entry means the product record was not found;
// every other item resolves to a numeric score. No failure from an
// individual task escapes this method.
func (o *Orchestrator) Score(ctx context.Context, productIDs []string) []*float64 {
	start := time.Now()
	defer func() {
		metrics.RecordBatchLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordBatch(len(productIDs))

	predictions := make([]*float64, len(productIDs))

	// Partition into cache hits and misses. Duplicate ids within the
	// batch are dispatched once; every position for the id gets the
	// same result.
	positions := make(map[string][]int)
	var misses []string
	for i, id := range productIDs {
		if score, ok := o.cache.Get(ctx, id); ok {
			metrics.RecordCacheHit()
			o.logger.Debug(ctx, "using cached score",
				logger.String("productID", id),
				logger.Float64("score", score),
			)
			s := score
			predictions[i] = &s
			continue
		}
		metrics.RecordCacheMiss()
		if _, seen := positions[id]; !seen {
			misses = append(misses, id)
		}
		positions[id] = append(positions[id], i)
	}

	if len(misses) == 0 {
		o.logger.Info(ctx, "no new products to score, returning cached results",
			logger.Int("batchSize", len(productIDs)),
		)
		return predictions
	}

	// Wave 1: score all cache misses concurrently.
	o.logger.Info(ctx, "scoring products",
		logger.Int("count", len(misses)),
		logger.Int("batchSize", len(productIDs)),
	)
	outcomes := o.dispatch(ctx, misses)

	var retries []string
	for _, id := range misses {
		out := outcomes[id]
		switch out.Status {
		case StatusSuccess:
			o.commit(ctx, predictions, positions[id], id, out.Score)
		case StatusNotFound:
			// Terminal: response slot stays nil, cache untouched.
		case StatusInvalid:
			o.logger.Warn(ctx, "first attempt failed, queuing retry",
				logger.String("productID", id),
				logger.Error(out.Cause),
			)
			retries = append(retries, id)
		}
	}

	// Wave 2: exactly one retry per still-failing item, launched only
	// after wave 1 has fully settled.
	if len(retries) > 0 {
		o.logger.Info(ctx, "running retries", logger.Int("count", len(retries)))
		for range retries {
			metrics.RecordRetry()
		}
		retryOutcomes := o.dispatch(ctx, retries)
		for _, id := range retries {
			out := retryOutcomes[id]
			switch out.Status {
			case StatusSuccess:
				o.logger.Info(ctx, "retry succeeded",
					logger.String("productID", id),
					logger.Float64("score", out.Score),
				)
				o.commit(ctx, predictions, positions[id], id, out.Score)
			case StatusNotFound:
				// The record disappeared between attempts; treat it the
				// same as a first-wave miss of the catalog.
			case StatusInvalid:
				metrics.RecordFallback()
				o.logger.Info(ctx, "using fallback score",
					logger.String("productID", id),
					logger.Float64("score", FallbackScore),
					logger.Error(out.Cause),
				)
				o.commit(ctx, predictions, positions[id], id, FallbackScore)
			}
		}
	}

	scored := 0
	for _, p := range predictions {
		if p != nil {
			scored++
		}
	}
	o.logger.Info(ctx, "batch complete",
		logger.Int("scored", scored),
		logger.Int("batchSize", len(productIDs)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return predictions
}

// commit writes a confirmed score into the cache and into every batch
// position held by the product id.
func (o *Orchestrator) commit(ctx context.Context, predictions []*float64, indices []int, productID string, score float64) {
	o.cache.Set(ctx, productID, score)
	for _, i := range indices {
		s := score
		predictions[i] = &s
	}
}

// dispatch fans out one scoring attempt per id and waits for the whole
// wave to settle. Each task carries its slice index so result order
// never depends on completion order. A panicking task is downgraded to
// an Invalid outcome instead of taking the batch down.
func (o *Orchestrator) dispatch(ctx context.Context, ids []string) map[string]Outcome {
	results := make([]Outcome, len(ids))

	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			metrics.UpdateInflightTasks(int(o.inflight.Add(1)))
			defer func() {
				metrics.UpdateInflightTasks(int(o.inflight.Add(-1)))
			}()

			defer func() {
				if rec := recover(); rec != nil {
					results[i] = Outcome{
						Status: StatusInvalid,
						Cause:  fmt.Errorf("%w: %v", ErrTaskPanicked, rec),
					}
				}
			}()
			results[i] = o.runner.Run(ctx, id)
		}(i, id)
	}
	wg.Wait()

	outcomes := make(map[string]Outcome, len(ids))
	for i, id := range ids {
		outcomes[id] = results[i]
	}
	return outcomes
}
