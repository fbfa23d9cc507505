package filestore

// writeTask identifies a dirty shard to be flushed. The drainer
// re-snapshots the shard under its lock at flush time, so a task is
// just an index; repeated writes to one shard enqueue repeated tasks
// (no coalescing).
type writeTask struct {
	shardID int
}

// persister is the persistence strategy behind the file backend.
// Exactly one persister instance runs per backend.
type persister interface {
	// start launches background goroutines.
	start() error

	// notify is called after a shard mutation, with the shard lock
	// already released. Timer-driven persisters ignore it; queue-driven
	// persisters block here when the queue is full (backpressure).
	notify(shardID int)

	// close stops accepting notifications, drains or flushes all
	// outstanding dirty state, and joins background goroutines.
	close() error
}
