package testreqs

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/truscore/pkg/logger"
)

// randomFloatDivisor scales crypto/rand integers into [0, 1).
const randomFloatDivisor = 1000000

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pickIndex returns a random index below n.
func pickIndex(n int) int {
	if n <= 0 {
		return 0
	}
	i, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(i.Int64())
}

// generateBatches builds batches of product ids. A RepeatRatio share of
// each batch re-uses ids from earlier batches so cache hits get
// exercised alongside fresh misses.
func generateBatches(ctx context.Context, config *Config) [][]string {
	pool := make([]string, config.NumProducts)
	for i := range pool {
		pool[i] = uuid.NewString()
	}

	batches := make([][]string, 0, config.NumBatches)
	var used []string
	for b := 0; b < config.NumBatches; b++ {
		batch := make([]string, 0, config.BatchSize)
		for j := 0; j < config.BatchSize; j++ {
			if len(used) > 0 && getRandomFloat() < config.RepeatRatio {
				batch = append(batch, used[pickIndex(len(used))])
				continue
			}
			id := pool[pickIndex(len(pool))]
			batch = append(batch, id)
			used = append(used, id)
		}
		batches = append(batches, batch)
	}

	logger.Get().Info(ctx, "generated batches",
		logger.Int("batches", len(batches)),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("productPool", config.NumProducts),
	)
	return batches
}
