package bench

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shardkv/internal/config"
)

// OpenResultsDB opens or creates the SQLite database that accumulates
// run summaries across invocations, so persistence strategies can be
// compared after the fact.
func OpenResultsDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if err := initResultsSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func initResultsSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			backend TEXT NOT NULL,
			workers INTEGER NOT NULL,
			pattern TEXT NOT NULL,
			codec TEXT NOT NULL,
			persist_mode TEXT NOT NULL,
			file_count INTEGER NOT NULL,
			queue_depth INTEGER NOT NULL,
			flush_period_us INTEGER NOT NULL,
			duration_sec REAL NOT NULL,
			total_ops INTEGER NOT NULL,
			total_ops_per_sec REAL NOT NULL,
			avg_worker_ops_per_sec REAL NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("init results schema: %w", err)
	}
	return nil
}

// InsertRun records one finished run and returns its generated ID.
func InsertRun(db *sql.DB, cfg *config.Config, summary Summary) (string, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC().Format(time.RFC3339)

	// The file section is meaningless for the memory baseline; store
	// zero values so rows stay comparable.
	codecName, persistMode := "", ""
	fileCount, queueDepth := 0, 0
	var flushPeriodUS int64
	if cfg.Backend == config.BackendFile {
		codecName = cfg.File.Codec
		persistMode = cfg.File.Persist.Mode
		fileCount = cfg.File.FileCount
		if persistMode == config.PersistAsync {
			queueDepth = cfg.File.Persist.QueueDepth
		} else {
			flushPeriodUS = cfg.File.Persist.FlushPeriod.Microseconds()
		}
	}

	_, err := db.Exec(
		`INSERT INTO runs (
			id, started_at, backend, workers, pattern, codec, persist_mode,
			file_count, queue_depth, flush_period_us,
			duration_sec, total_ops, total_ops_per_sec, avg_worker_ops_per_sec
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, startedAt, cfg.Backend, cfg.Workers, cfg.Pattern, codecName, persistMode,
		fileCount, queueDepth, flushPeriodUS,
		summary.TotalRuntime.Seconds(), summary.TotalOps,
		summary.TotalOpsPerSec, summary.AvgWorkerOpsSec,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}
