// Package config defines service configuration structures and loading.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL selects the postgres event store; empty runs the
	// in-memory store (local development and tests).
	DatabaseURL string `koanf:"database_url"`

	// CacheTTLSeconds bounds how long derived leaderboards and stats may
	// serve without recomputation.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the in-memory cache; 0 means unbounded.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// DisableCache forces the direct-computation path.
	DisableCache bool `koanf:"disable_cache"`

	// GradeWorkerCount bounds bulk grading parallelism.
	GradeWorkerCount int `koanf:"grade_worker_count"`

	// DBMaxConns and DBMinConns size the postgres pool.
	DBMaxConns int `koanf:"db_max_conns"`
	DBMinConns int `koanf:"db_min_conns"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		CacheTTLSeconds:  300,
		CacheMaxEntries:  10_000,
		GradeWorkerCount: runtime.NumCPU(),
		DBMaxConns:       25,
		DBMinConns:       5,
	}
}
