// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration shared by the server and scoutctl.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DBPath is the SQLite database file. ":memory:" keeps data in process.
	DBPath string `koanf:"db_path" validate:"required"`

	// ImportQueueSize bounds the in-memory bulk import queue.
	ImportQueueSize int `koanf:"import_queue_size" validate:"gte=1"`

	// ImportWorkers sets the number of import workers.
	ImportWorkers int `koanf:"import_workers" validate:"gte=1"`

	// ImportMaxItems caps the number of payloads in one bulk import.
	ImportMaxItems int `koanf:"import_max_items" validate:"gte=1"`

	// DedupeSize bounds the in-memory claim set. Zero disables eviction.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// MaxRankingsLimit caps GET /api/rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit" validate:"gte=1"`

	// DefaultRankingsLimit applies when limit is absent.
	DefaultRankingsLimit int `koanf:"default_rankings_limit" validate:"gte=1,ltefield=MaxRankingsLimit"`

	// ChartTopN is the default number of bars in the rankings chart.
	ChartTopN int `koanf:"chart_top_n" validate:"gte=1,lte=100"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		DBPath:               "scouting.db",
		ImportQueueSize:      1024,
		ImportWorkers:        runtime.NumCPU(),
		ImportMaxItems:       500,
		DedupeSize:           50_000,
		MaxRankingsLimit:     200,
		DefaultRankingsLimit: 50,
		ChartTopN:            10,
	}
}
