// Package repository defines the score cache interface and errors.
package repository

// Option applies a configuration option to the MemStore.
type Option func(*config)

type config struct {
	shardCount int
}

// WithShardCount sets the number of cache shards.
func WithShardCount(count int) Option {
	return func(c *config) {
		if count > 0 {
			c.shardCount = count
		}
	}
}
