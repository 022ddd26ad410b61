package testreqs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/truscore/pkg/logger"
)

// Score bounds used when verifying responses.
const (
	minScore = 0.0
	maxScore = 100.0
)

// Run executes the complete scoring request test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting truscore request test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("batches", config.NumBatches),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.Float64("repeatRatio", config.RepeatRatio),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	batches := generateBatches(ctx, config)

	if err := submitBatches(ctx, config, batches, stats); err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.AlignmentErrors > 0 || stats.OutOfRangeScores > 0 {
		return fmt.Errorf("verification failed: %d alignment errors, %d out-of-range scores",
			stats.AlignmentErrors, stats.OutOfRangeScores)
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitBatches posts all batches using a bounded set of workers and
// verifies each reply as it arrives.
func submitBatches(ctx context.Context, config *Config, batches [][]string, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/score"

	var (
		succeeded  int64
		failed     int64
		scored     int64
		absent     int64
		misaligned int64
		outOfRange int64
	)

	jobs := make(chan []string)
	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				resp, err := client.PostScore(ctx, url, batch)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "batch failed", logger.Error(err))
					continue
				}
				atomic.AddInt64(&succeeded, 1)

				if len(resp.Response) != len(batch) {
					atomic.AddInt64(&misaligned, 1)
					continue
				}
				for _, s := range resp.Response {
					if s == nil {
						atomic.AddInt64(&absent, 1)
						continue
					}
					atomic.AddInt64(&scored, 1)
					if *s < minScore || *s > maxScore {
						atomic.AddInt64(&outOfRange, 1)
					}
				}
			}
		}()
	}

	for _, batch := range batches {
		stats.BatchesSubmitted++
		stats.ItemsSubmitted += len(batch)
		select {
		case jobs <- batch:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	stats.BatchesSucceeded = int(succeeded)
	stats.BatchesFailed = int(failed)
	stats.ItemsScored = int(scored)
	stats.ItemsAbsent = int(absent)
	stats.AlignmentErrors = int(misaligned)
	stats.OutOfRangeScores = int(outOfRange)
	return nil
}

// displayFinalStats logs the end-of-run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "request test finished",
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesSucceeded", stats.BatchesSucceeded),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("itemsSubmitted", stats.ItemsSubmitted),
		logger.Int("itemsScored", stats.ItemsScored),
		logger.Int("itemsAbsent", stats.ItemsAbsent),
		logger.Int("alignmentErrors", stats.AlignmentErrors),
		logger.Int("outOfRangeScores", stats.OutOfRangeScores),
		logger.Duration("duration", stats.Duration),
	)
}
