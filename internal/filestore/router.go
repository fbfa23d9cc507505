package filestore

import (
	"fmt"
	"hash/fnv"
)

// Router maps keys to shard indices.
//
// Routing formula: shardID = FNV-1a(key) % fileCount
//
// Properties:
//   - Deterministic: the same key always routes to the same shard
//   - Stable across restarts: the hash has no per-process seed, so a
//     shard file always holds the same logical subset of keys
//   - Versioned: changing the hash or fileCount is a breaking change
//     for the on-disk layout
type Router struct {
	fileCount int
}

func NewRouter(fileCount int) (*Router, error) {
	if fileCount <= 0 {
		return nil, fmt.Errorf("shard count must be > 0, got %d", fileCount)
	}
	return &Router{fileCount: fileCount}, nil
}

// Route returns the shard index for key, in [0, fileCount).
func (r *Router) Route(key string) int {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int(h.Sum64() % uint64(r.fileCount))
}

// FileCount returns the fixed shard count.
func (r *Router) FileCount() int {
	return r.fileCount
}
