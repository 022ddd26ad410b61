package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/okian/truscore/internal/testreqs"
	"github.com/okian/truscore/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumProducts = 100
	defaultNumBatches  = 20
	defaultBatchSize   = 10
	defaultRepeatRatio = 0.3
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 2 * time.Minute
	defaultTestTimeout = 15 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8090", "Base URL of the service")
		numProducts = flag.Int("products", defaultNumProducts, "Number of distinct product ids to generate")
		numBatches  = flag.Int("batches", defaultNumBatches, "Number of batches to submit")
		batchSize   = flag.Int("batch-size", defaultBatchSize, "Product ids per batch")
		repeatRatio = flag.Float64("repeat", defaultRepeatRatio, "Fraction of each batch drawn from already-used ids")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	if err := logger.Init(logger.WithLevel(level)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testreqs.Config{
		BaseURL:     *baseURL,
		NumProducts: *numProducts,
		NumBatches:  *numBatches,
		BatchSize:   *batchSize,
		RepeatRatio: *repeatRatio,
		Workers:     *workers,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}

	if err := testreqs.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "request test failed", logger.Error(err))
		os.Exit(1)
	}
}
