package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"shardkv/internal/logger"
)

// Report logs the run summary, one line per aggregate, mirroring what
// the counters mean rather than how they were collected.
func Report(log *logger.Logger, all []Stats, summary Summary) {
	for _, s := range all {
		log.Debug("worker %d: ops=%d runtime=%v ops/sec=%.2f",
			s.Worker, s.Ops, s.Runtime, s.OpsPerSec())
	}

	log.Info("total_ops: %d", summary.TotalOps)
	log.Info("total_runtime: %v", summary.TotalRuntime)
	log.Info("total_ops_per_sec: %.2f", summary.TotalOpsPerSec)
	log.Info("average_ops_per_sec: %.2f", summary.AvgWorkerOpsSec)
}

// WriteCSV writes per-worker stats to worker_stats.csv in dir.
func WriteCSV(all []Stats, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, "worker_stats.csv"))
	if err != nil {
		return fmt.Errorf("create worker stats csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"worker", "ops", "runtime_sec", "ops_per_sec"}); err != nil {
		return err
	}
	for _, s := range all {
		row := []string{
			strconv.Itoa(s.Worker),
			strconv.FormatInt(s.Ops, 10),
			strconv.FormatFloat(s.Runtime.Seconds(), 'f', 6, 64),
			strconv.FormatFloat(s.OpsPerSec(), 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
