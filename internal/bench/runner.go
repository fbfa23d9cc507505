// Package bench is the load-generation harness: a pool of worker
// goroutines issuing get/set traffic against a store for a wall-clock
// budget, with per-worker counters folded into a run summary.
package bench

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"shardkv/internal/logger"
	"shardkv/internal/store"
)

const (
	// Share of operations that are reads; the rest are writes.
	readShare = 0.10

	// Keys are drawn uniformly from Key0..Key65535.
	keySpace = 1 << 16

	payload = "foo"
)

// Runner drives load against a store. The store outlives the run; the
// caller decides when to close it.
type Runner struct {
	store    store.Store
	workers  int
	duration time.Duration
	pattern  Pattern
	seed     int64
	logger   *logger.Logger
}

func NewRunner(s store.Store, workers int, duration time.Duration, pattern Pattern, log *logger.Logger) *Runner {
	return &Runner{
		store:    s,
		workers:  workers,
		duration: duration,
		pattern:  pattern,
		seed:     time.Now().UnixNano(),
		logger:   log,
	}
}

// SetSeed fixes the rng seed base for reproducible runs.
func (r *Runner) SetSeed(seed int64) {
	r.seed = seed
}

// Run spawns the workers, waits out the load budget, and returns
// per-worker stats. The first worker error aborts the run.
func (r *Runner) Run() ([]Stats, error) {
	r.logger.Info("Starting load: workers=%d duration=%v pattern=%s",
		r.workers, r.duration, r.pattern)

	results := make([]Stats, r.workers)
	errs := make(chan error, r.workers)

	var wg sync.WaitGroup
	wg.Add(r.workers)
	for i := 0; i < r.workers; i++ {
		go func(id int) {
			defer wg.Done()
			stats, err := r.work(id)
			if err != nil {
				errs <- fmt.Errorf("worker %d: %w", id, err)
				return
			}
			results[id] = stats
		}(i)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	return results, nil
}

// work is one worker's loop: pick a key, issue a read or a write, take
// the pattern's think time, until the budget is spent.
func (r *Runner) work(id int) (Stats, error) {
	rng := rand.New(rand.NewSource(r.seed + int64(id)))

	var ops int64
	start := time.Now()
	deadline := start.Add(r.duration)

	for time.Now().Before(deadline) {
		key := fmt.Sprintf("Key%d", rng.Intn(keySpace))

		if rng.Float64() > readShare {
			if err := r.store.Set(key, payload); err != nil {
				return Stats{}, err
			}
		} else {
			if _, _, err := r.store.Get(key); err != nil {
				return Stats{}, err
			}
		}
		ops++

		r.pattern.wait(rng)
	}

	return Stats{
		Worker:  id,
		Ops:     ops,
		Runtime: time.Since(start),
	}, nil
}
