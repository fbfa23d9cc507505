// Package config holds the process-wide run configuration. Everything
// here is fixed at startup; nothing is mutated once the run begins.
package config

import (
	"time"

	"shardkv/internal/codec"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"

	PersistSync  = "sync"
	PersistAsync = "async"

	PatternBursty      = "bursty"
	PatternConsistent  = "consistent"
	PatternUnthrottled = "unthrottled"
)

type Config struct {
	// Backend selects the store under test: memory | file.
	Backend string

	// Workers is the number of load-generating goroutines.
	Workers int

	// Duration is the wall-clock load budget.
	Duration time.Duration

	// Pattern is the emulated traffic shape: bursty | consistent | unthrottled.
	Pattern string

	LogLevel string

	// MetricsAddr, when non-empty, serves Prometheus metrics on this
	// address for the duration of the run (e.g. ":9090").
	MetricsAddr string

	File  FileConfig
	Bench BenchConfig
}

// FileConfig configures the file-backed store.
type FileConfig struct {
	// Dir is the shard file directory. Empty means a fresh temp dir.
	Dir string

	// FileCount is the number of shards. Fixed for the lifetime of the
	// on-disk layout; zero is a configuration error.
	FileCount int

	// Codec selects the shard file serialization: json | cbor.
	Codec string

	// RecoverCorrupt renames an undecodable shard file to a timestamped
	// backup and starts that shard empty instead of failing the load.
	RecoverCorrupt bool

	Persist PersistConfig
}

// PersistConfig selects and tunes the persistence strategy.
type PersistConfig struct {
	// Mode is the persister strategy: sync | async.
	Mode string

	// FlushPeriod is the sync persister's wake interval. Bounded
	// staleness: up to one period of writes is lost on an unclean exit.
	FlushPeriod time.Duration

	// QueueDepth bounds the async write queue; a full queue blocks
	// producers (backpressure) rather than growing or dropping.
	QueueDepth int

	// Drainers is the number of async background writer goroutines.
	Drainers int

	// MaxRetries bounds async write retries before a task is dropped.
	MaxRetries int
}

// BenchConfig configures benchmark result output.
type BenchConfig struct {
	// CSVDir, when non-empty, receives per-worker stats as CSV.
	CSVDir string

	// ResultsDB, when non-empty, is a SQLite database path that
	// accumulates run summaries across invocations.
	ResultsDB string
}

func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendMemory,
		Workers:  100,
		Duration: 60 * time.Second,
		Pattern:  PatternConsistent,
		LogLevel: "info",
		File: FileConfig{
			FileCount:      8,
			Codec:          "json",
			RecoverCorrupt: false,
			Persist: PersistConfig{
				Mode:        PersistSync,
				FlushPeriod: 500 * time.Microsecond,
				QueueDepth:  1024,
				Drainers:    1,
				MaxRetries:  3,
			},
		},
	}
}

// Validate checks the configuration before any work begins.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return &ConfigError{Field: "Workers", Message: "must be > 0"}
	}
	if c.Duration <= 0 {
		return &ConfigError{Field: "Duration", Message: "must be > 0"}
	}
	switch c.Pattern {
	case PatternBursty, PatternConsistent, PatternUnthrottled:
	default:
		return &ConfigError{Field: "Pattern", Message: "unknown pattern " + c.Pattern}
	}

	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendFile:
	default:
		return &ConfigError{Field: "Backend", Message: "unknown backend " + c.Backend}
	}

	if c.File.FileCount <= 0 {
		return &ConfigError{Field: "File.FileCount", Message: "must be > 0"}
	}
	if _, err := codec.FromName(c.File.Codec); err != nil {
		return &ConfigError{Field: "File.Codec", Message: err.Error()}
	}

	switch c.File.Persist.Mode {
	case PersistSync:
		if c.File.Persist.FlushPeriod <= 0 {
			return &ConfigError{Field: "File.Persist.FlushPeriod", Message: "must be > 0"}
		}
	case PersistAsync:
		if c.File.Persist.QueueDepth <= 0 {
			return &ConfigError{Field: "File.Persist.QueueDepth", Message: "must be > 0"}
		}
		if c.File.Persist.Drainers <= 0 {
			return &ConfigError{Field: "File.Persist.Drainers", Message: "must be > 0"}
		}
		if c.File.Persist.MaxRetries < 0 {
			return &ConfigError{Field: "File.Persist.MaxRetries", Message: "must be >= 0"}
		}
	default:
		return &ConfigError{Field: "File.Persist.Mode", Message: "unknown mode " + c.File.Persist.Mode}
	}

	return nil
}

// ConfigError is a fatal configuration problem, surfaced before any
// work begins.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " - " + e.Message
}
