// Command shardkv-bench runs key-value store backends under load and
// reports throughput, so persistence strategies can be compared.
package main

import (
	"flag"
	"fmt"
	"os"

	"shardkv/internal/bench"
	"shardkv/internal/config"
	"shardkv/internal/filestore"
	"shardkv/internal/logger"
	"shardkv/internal/metrics"
	"shardkv/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file (optional; flags override it)")

	// Flag values land in a scratch config; explicitly set flags are
	// copied over the file/env result after parsing, so precedence is
	// flags > file > environment > defaults.
	fv := config.DefaultConfig()
	flag.StringVar(&fv.Backend, "backend", fv.Backend, "Backend under test: memory | file")
	flag.IntVar(&fv.Workers, "workers", fv.Workers, "Number of load-generating goroutines")
	flag.DurationVar(&fv.Duration, "duration", fv.Duration, "How long to generate load for")
	flag.StringVar(&fv.Pattern, "pattern", fv.Pattern, "Traffic pattern: bursty | consistent | unthrottled")
	flag.StringVar(&fv.LogLevel, "log-level", fv.LogLevel, "Log level: debug | info | warn | error")
	flag.StringVar(&fv.MetricsAddr, "metrics-addr", fv.MetricsAddr, "Serve Prometheus metrics on this address during the run (empty = off)")
	flag.StringVar(&fv.File.Dir, "output", fv.File.Dir, "Shard file directory for the file backend (empty = fresh temp dir)")
	flag.IntVar(&fv.File.FileCount, "file-count", fv.File.FileCount, "Number of files to shard across")
	flag.StringVar(&fv.File.Codec, "serializer", fv.File.Codec, "Shard file format: json | cbor")
	flag.BoolVar(&fv.File.RecoverCorrupt, "recover-corrupt", fv.File.RecoverCorrupt, "Move undecodable shard files aside instead of failing startup")
	flag.StringVar(&fv.File.Persist.Mode, "persist", fv.File.Persist.Mode, "Persistence strategy: sync | async")
	flag.DurationVar(&fv.File.Persist.FlushPeriod, "flush-period", fv.File.Persist.FlushPeriod, "Flush interval for the sync persister")
	flag.IntVar(&fv.File.Persist.QueueDepth, "queue-depth", fv.File.Persist.QueueDepth, "Write queue capacity for the async persister")
	flag.IntVar(&fv.File.Persist.Drainers, "drainers", fv.File.Persist.Drainers, "Background writer goroutines for the async persister")
	flag.IntVar(&fv.File.Persist.MaxRetries, "write-retries", fv.File.Persist.MaxRetries, "Write retries before an async task is dropped")
	flag.StringVar(&fv.Bench.CSVDir, "csv-dir", fv.Bench.CSVDir, "Also write per-worker stats as CSV into this directory")
	flag.StringVar(&fv.Bench.ResultsDB, "results-db", fv.Bench.ResultsDB, "Also record the run summary in this SQLite database")
	flag.Parse()

	cfg := config.DefaultConfig()
	if err := config.LoadFile(*cfgPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "shardkv-bench: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		applyFlag(cfg, fv, f.Name)
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "shardkv-bench: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel), "[shardkv]")
	if err := run(cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

// applyFlag copies one explicitly set flag from the scratch config.
func applyFlag(cfg, fv *config.Config, name string) {
	switch name {
	case "backend":
		cfg.Backend = fv.Backend
	case "workers":
		cfg.Workers = fv.Workers
	case "duration":
		cfg.Duration = fv.Duration
	case "pattern":
		cfg.Pattern = fv.Pattern
	case "log-level":
		cfg.LogLevel = fv.LogLevel
	case "metrics-addr":
		cfg.MetricsAddr = fv.MetricsAddr
	case "output":
		cfg.File.Dir = fv.File.Dir
	case "file-count":
		cfg.File.FileCount = fv.File.FileCount
	case "serializer":
		cfg.File.Codec = fv.File.Codec
	case "recover-corrupt":
		cfg.File.RecoverCorrupt = fv.File.RecoverCorrupt
	case "persist":
		cfg.File.Persist.Mode = fv.File.Persist.Mode
	case "flush-period":
		cfg.File.Persist.FlushPeriod = fv.File.Persist.FlushPeriod
	case "queue-depth":
		cfg.File.Persist.QueueDepth = fv.File.Persist.QueueDepth
	case "drainers":
		cfg.File.Persist.Drainers = fv.File.Persist.Drainers
	case "write-retries":
		cfg.File.Persist.MaxRetries = fv.File.Persist.MaxRetries
	case "csv-dir":
		cfg.Bench.CSVDir = fv.Bench.CSVDir
	case "results-db":
		cfg.Bench.ResultsDB = fv.Bench.ResultsDB
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		defer srv.Close()
		log.Info("Metrics on http://%s/metrics", cfg.MetricsAddr)
	}

	s, err := buildStore(cfg, log)
	if err != nil {
		return err
	}

	runner := bench.NewRunner(s, cfg.Workers, cfg.Duration,
		bench.PatternFromName(cfg.Pattern), log)
	all, runErr := runner.Run()

	// Always shut the store down cleanly, even after a failed run, so
	// queued writes are not silently lost.
	if err := s.Close(); err != nil {
		log.Error("Store shutdown: %v", err)
	}
	if runErr != nil {
		return runErr
	}

	summary, err := bench.Summarize(all)
	if err != nil {
		return err
	}
	bench.Report(log, all, summary)

	if cfg.Bench.CSVDir != "" {
		if err := bench.WriteCSV(all, cfg.Bench.CSVDir); err != nil {
			return err
		}
		log.Info("Per-worker stats written to %s", cfg.Bench.CSVDir)
	}
	if cfg.Bench.ResultsDB != "" {
		db, err := bench.OpenResultsDB(cfg.Bench.ResultsDB)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := bench.InsertRun(db, cfg, summary)
		if err != nil {
			return err
		}
		log.Info("Run %s recorded in %s", runID, cfg.Bench.ResultsDB)
	}
	return nil
}

func buildStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		fileCfg := cfg.File
		if fileCfg.Dir == "" {
			dir, err := os.MkdirTemp("", "shardkv-")
			if err != nil {
				return nil, fmt.Errorf("create temp shard directory: %w", err)
			}
			fileCfg.Dir = dir
			log.Info("Shard files in %s", dir)
		}
		return filestore.New(fileCfg, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
