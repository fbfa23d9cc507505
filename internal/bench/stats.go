package bench

import (
	"errors"
	"time"
)

// ErrNoWorkers is returned when a run produced no per-worker stats.
var ErrNoWorkers = errors.New("no workers completed")

// Stats is one worker's result.
type Stats struct {
	Worker  int
	Ops     int64
	Runtime time.Duration
}

// OpsPerSec is the worker's own throughput.
func (s Stats) OpsPerSec() float64 {
	if s.Runtime <= 0 {
		return 0
	}
	return float64(s.Ops) / s.Runtime.Seconds()
}

// Summary aggregates a full run.
type Summary struct {
	Workers         int
	TotalOps        int64
	TotalRuntime    time.Duration // slowest worker's wall clock
	TotalOpsPerSec  float64
	AvgWorkerOpsSec float64
}

// Summarize folds per-worker stats into a run summary. Total throughput
// divides total ops by the slowest worker's runtime; the average is the
// mean of per-worker throughputs.
func Summarize(all []Stats) (Summary, error) {
	if len(all) == 0 {
		return Summary{}, ErrNoWorkers
	}

	var totalOps int64
	var maxRuntime time.Duration
	var sumOpsPerSec float64

	for _, s := range all {
		totalOps += s.Ops
		if s.Runtime > maxRuntime {
			maxRuntime = s.Runtime
		}
		sumOpsPerSec += s.OpsPerSec()
	}

	summary := Summary{
		Workers:         len(all),
		TotalOps:        totalOps,
		TotalRuntime:    maxRuntime,
		AvgWorkerOpsSec: sumOpsPerSec / float64(len(all)),
	}
	if maxRuntime > 0 {
		summary.TotalOpsPerSec = float64(totalOps) / maxRuntime.Seconds()
	}
	return summary, nil
}
