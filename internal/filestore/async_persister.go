package filestore

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"

	"shardkv/internal/errors"
	"shardkv/internal/logger"
	"shardkv/internal/metrics"
)

// asyncPersister is the queued-writer strategy: a bounded task queue
// shared by all producers, drained by a fixed pool of background
// writer goroutines. A full queue blocks the producer inside notify —
// that block is the backpressure contract, trading caller latency for
// bounded memory instead of unbounded buffering or silent drops.
//
// Writes to one shard are not coalesced: every mutation enqueues one
// full-shard-rewrite task, so write amplification tracks update rate.
type asyncPersister struct {
	shards   []*shard
	writer   *shardWriter
	queue    chan writeTask
	drainers int
	pool     *ants.Pool
	retry    *errors.RetryController
	logger   *logger.Logger
	wg       sync.WaitGroup
}

func newAsyncPersister(shards []*shard, writer *shardWriter, queueDepth, drainers, maxRetries int, log *logger.Logger) *asyncPersister {
	return &asyncPersister{
		shards:   shards,
		writer:   writer,
		queue:    make(chan writeTask, queueDepth),
		drainers: drainers,
		retry:    errors.NewRetryController(maxRetries, 10*time.Millisecond, time.Second),
		logger:   log,
	}
}

func (p *asyncPersister) start() error {
	pool, err := ants.NewPool(p.drainers, ants.WithPanicHandler(func(v interface{}) {
		p.logger.Error("Drainer panic: %v", v)
	}))
	if err != nil {
		return fmt.Errorf("create drainer pool: %w", err)
	}
	p.pool = pool

	for i := 0; i < p.drainers; i++ {
		p.wg.Add(1)
		if err := p.pool.Submit(p.drain); err != nil {
			p.wg.Done()
			return fmt.Errorf("start drainer: %w", err)
		}
	}
	return nil
}

// notify enqueues a write task, blocking when the queue is at capacity
// until a drainer makes room.
func (p *asyncPersister) notify(shardID int) {
	p.queue <- writeTask{shardID: shardID}
	metrics.SetQueueDepth(len(p.queue))
}

// drain pops tasks in FIFO order until the queue closes. Each task is
// flushed with bounded retries; an exhausted task is dropped with a log
// line, and the store keeps serving.
func (p *asyncPersister) drain() {
	defer p.wg.Done()

	for task := range p.queue {
		metrics.SetQueueDepth(len(p.queue))
		p.handle(task)
	}
}

func (p *asyncPersister) handle(task writeTask) {
	s := p.shards[task.shardID]
	err := p.retry.Retry(func() error {
		return p.writer.flush(s, task.shardID)
	})
	if err != nil {
		metrics.RecordDroppedTask()
		p.logger.Error("Dropping write task for shard %d after %d attempts: %v",
			task.shardID, p.retry.MaxRetries()+1, err)
	}
}

// close drains the queue fully, joins the drainers, and then makes one
// final pass over still-dirty shards (anything re-marked by a failed
// write). Producers must already be stopped.
func (p *asyncPersister) close() error {
	close(p.queue)
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}

	var errs *multierror.Error
	for id, s := range p.shards {
		if !s.isDirty() {
			continue
		}
		if err := p.writer.flush(s, id); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("final flush of shard %d: %w", id, err))
		}
	}
	return errs.ErrorOrNil()
}
