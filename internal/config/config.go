// Package config assembles the engine configuration from environment
// variables with sane defaults.
package config

import (
	"time"

	"pagekit/pkg/config"
)

// Database holds MySQL connection settings.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Engine holds cache and query tuning knobs.
type Engine struct {
	// ResultTTL is the result-cache TTL for queries without full-text search.
	ResultTTL time.Duration
	// FullTextResultTTL is the shortened result-cache TTL when a full-text
	// predicate is active.
	FullTextResultTTL time.Duration
	// EmptyPageTTL caches the short-circuited empty page for out-of-range
	// offsets.
	EmptyPageTTL time.Duration
	// CountTTL is the count-cache TTL, deliberately long so all pages of one
	// filter set share a single count resolution.
	CountTTL time.Duration
	// CleanupInterval is the cadence of the background TTL sweep.
	CleanupInterval time.Duration
	// SlowQueryThreshold classifies queries as slow in stats and logs.
	SlowQueryThreshold time.Duration
	// CountSentinel is the degraded row count used when every estimation
	// tier fails.
	CountSentinel int64
	// TableConfigPath optionally points to a YAML file of per-table metadata.
	TableConfigPath string
}

// Config is the full engine configuration.
type Config struct {
	Database Database
	Engine   Engine
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Database: Database{
			Host:            config.GetEnvString("DB_HOST", "localhost"),
			Port:            config.GetEnvInt("DB_PORT", 3306),
			User:            config.GetEnvString("DB_USER", "root"),
			Password:        config.GetEnvString("DB_PASSWORD", ""),
			Name:            config.GetEnvString("DB_NAME", "app"),
			MaxOpenConns:    config.GetEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    config.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: config.GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Engine: Engine{
			ResultTTL:          config.GetEnvDuration("QUERY_CACHE_TTL", 5*time.Minute),
			FullTextResultTTL:  config.GetEnvDuration("QUERY_CACHE_FULLTEXT_TTL", time.Minute),
			EmptyPageTTL:       config.GetEnvDuration("QUERY_CACHE_EMPTY_PAGE_TTL", 30*time.Second),
			CountTTL:           config.GetEnvDuration("COUNT_CACHE_TTL", 10*time.Minute),
			CleanupInterval:    config.GetEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute),
			SlowQueryThreshold: config.GetEnvDuration("SLOW_QUERY_THRESHOLD", time.Second),
			CountSentinel:      config.GetEnvInt64("COUNT_SENTINEL", 1_000_000),
			TableConfigPath:    config.GetEnvString("TABLE_CONFIG_PATH", ""),
		},
	}
}
