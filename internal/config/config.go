// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile enables a rotating file sink alongside stdout when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// ShardCount configures the number of shards in the score cache.
	ShardCount int `koanf:"shard_count"`

	// MaxConcurrency bounds how many scoring tasks one wave may run at
	// once; 0 removes the bound.
	MaxConcurrency int `koanf:"max_concurrency"`

	// OracleTimeoutMS bounds each individual oracle invocation.
	OracleTimeoutMS int `koanf:"oracle_timeout_ms"`

	// CatalogBaseURL and CatalogTimeoutMS configure the product
	// metadata lookup service.
	CatalogBaseURL   string `koanf:"catalog_base_url"`
	CatalogTimeoutMS int    `koanf:"catalog_timeout_ms"`

	// Oracle endpoint and completion parameters.
	OracleBaseURL     string  `koanf:"oracle_base_url"`
	OracleAPIKey      string  `koanf:"oracle_api_key"`
	OracleModel       string  `koanf:"oracle_model"`
	OracleMaxTokens   int     `koanf:"oracle_max_tokens"`
	OracleTemperature float64 `koanf:"oracle_temperature"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":8090",
		ShardCount:        8,
		MaxConcurrency:    16,
		OracleTimeoutMS:   60_000,
		CatalogBaseURL:    "https://api.checkerchain.com/api/v1",
		CatalogTimeoutMS:  10_000,
		OracleBaseURL:     "https://api.openai.com/v1",
		OracleModel:       "gpt-4o",
		OracleMaxTokens:   1000,
		OracleTemperature: 0.5,
	}
	return c
}
