// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/truscore/internal/adapters/catalog"
	"github.com/okian/truscore/internal/adapters/oracle"
	repository "github.com/okian/truscore/internal/adapters/repository"
	"github.com/okian/truscore/internal/engine"
	"github.com/okian/truscore/pkg/logger"
)

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	cache        repository.Store
	fetcher      catalog.Fetcher
	oracle       oracle.Oracle
	orchestrator *engine.Orchestrator

	// Configuration
	shardCount        int
	maxConcurrency    int
	oracleTimeout     time.Duration
	catalogBaseURL    string
	catalogTimeout    time.Duration
	oracleBaseURL     string
	oracleAPIKey      string
	oracleModel       string
	oracleMaxTokens   int
	oracleTemperature float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShardCount sets the number of score cache shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxConcurrency bounds the orchestrator's per-wave fan-out.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxConcurrency = n
		}
	}
}

// WithOracleTimeout bounds each individual oracle invocation.
func WithOracleTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.oracleTimeout = timeout
		}
	}
}

// WithCatalog configures the product catalog endpoint.
func WithCatalog(baseURL string, timeout time.Duration) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.catalogBaseURL = baseURL
		}
		if timeout > 0 {
			s.catalogTimeout = timeout
		}
	}
}

// WithOracleEndpoint configures the oracle endpoint and credentials.
func WithOracleEndpoint(baseURL, apiKey string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.oracleBaseURL = baseURL
		}
		s.oracleAPIKey = apiKey
	}
}

// WithOracleModel configures the oracle completion parameters.
func WithOracleModel(model string, maxTokens int, temperature float64) Option {
	return func(s *Service) {
		if model != "" {
			s.oracleModel = model
		}
		if maxTokens > 0 {
			s.oracleMaxTokens = maxTokens
		}
		if temperature >= 0 {
			s.oracleTemperature = temperature
		}
	}
}

// WithFetcher injects a custom product fetcher, replacing the HTTP
// catalog client. Used by tests and tooling.
func WithFetcher(f catalog.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithOracle injects a custom oracle, replacing the HTTP client.
// Used by tests and tooling.
func WithOracle(o oracle.Oracle) Option {
	return func(s *Service) {
		if o != nil {
			s.oracle = o
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		shardCount:        8,
		maxConcurrency:    16,
		oracleTimeout:     60 * time.Second,
		catalogTimeout:    10 * time.Second,
		oracleModel:       "gpt-4o",
		oracleMaxTokens:   1000,
		oracleTemperature: 0.5,
		logger:            nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoring service...")

	s.cache = repository.NewMemStore(
		repository.WithShardCount(s.shardCount),
	)
	if s.fetcher == nil {
		s.fetcher = catalog.NewClient(s.catalogBaseURL,
			catalog.WithTimeout(s.catalogTimeout),
		)
	}
	if s.oracle == nil {
		s.oracle = oracle.NewClient(s.oracleBaseURL, s.oracleAPIKey,
			oracle.WithModel(s.oracleModel),
			oracle.WithMaxTokens(s.oracleMaxTokens),
			oracle.WithTemperature(s.oracleTemperature),
		)
	}

	runner := engine.NewRunner(s.fetcher, s.oracle,
		engine.WithOracleTimeout(s.oracleTimeout),
	)
	s.orchestrator = engine.New(s.cache, runner,
		engine.WithMaxConcurrency(s.maxConcurrency),
		engine.WithLogger(s.logger.Named("orchestrator")),
	)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("shards", s.shardCount),
		logger.Int("maxConcurrency", s.maxConcurrency),
		logger.Duration("oracleTimeout", s.oracleTimeout),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "scoring service stopped")
	s.started = false
}

// Score answers a batch of product ids with positionally aligned
// scores; nil entries mean the product record was not found.
func (s *Service) Score(ctx context.Context, productIDs []string) []*float64 {
	s.mu.RLock()
	orchestrator := s.orchestrator
	s.mu.RUnlock()

	if orchestrator == nil {
		return make([]*float64, len(productIDs))
	}
	return orchestrator.Score(ctx, productIDs)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"shardCount":     s.shardCount,
		"maxConcurrency": s.maxConcurrency,
	}

	if s.started {
		stats["cachedScores"] = s.cache.Len(context.Background())
	}

	return stats
}

// CacheSize returns the current number of cached scores.
func (s *Service) CacheSize(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil {
		return 0
	}
	return s.cache.Len(ctx)
}
