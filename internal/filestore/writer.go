package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shardkv/internal/codec"
	"shardkv/internal/logger"
	"shardkv/internal/metrics"
)

// shardFileName builds the backing filename for a shard index. The
// shard count is part of the name, so a run with a different fileCount
// never loads (or clobbers) another layout's files.
func shardFileName(fileCount, index int, c codec.Codec) string {
	return fmt.Sprintf("store_size=%d_idx=%d.%s", fileCount, index, c.Extension())
}

// shardWriter owns the per-shard write logic shared by both persisters:
// snapshot under lock, serialize, rewrite the whole file.
type shardWriter struct {
	dir       string
	fileCount int
	codec     codec.Codec
	logger    *logger.Logger
}

func newShardWriter(dir string, fileCount int, c codec.Codec, log *logger.Logger) *shardWriter {
	return &shardWriter{
		dir:       dir,
		fileCount: fileCount,
		codec:     c,
		logger:    log,
	}
}

func (w *shardWriter) path(index int) string {
	return filepath.Join(w.dir, shardFileName(w.fileCount, index, w.codec))
}

// flush rewrites shard index's file from a fresh snapshot. On failure
// the shard is re-marked dirty so a later cycle retries it.
func (w *shardWriter) flush(s *shard, index int) error {
	snap := s.snapshot()

	start := time.Now()
	err := w.write(index, snap)
	if err != nil {
		metrics.RecordFlushFailure()
		s.markDirty()
		return err
	}
	metrics.ObserveFlush(time.Since(start))
	return nil
}

// write serializes a snapshot and replaces the shard file. The temp
// file + rename keeps a crash mid-write from leaving a torn file in
// place of the previous good one.
func (w *shardWriter) write(index int, snap map[string]string) error {
	data, err := w.codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode shard %d: %w", index, err)
	}

	path := w.path(index)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write shard %d: %w", index, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace shard %d: %w", index, err)
	}
	return nil
}

// load reads and decodes shard index's file. A missing file is an empty
// shard. A malformed file fails with a *codec.DecodeError naming the
// path, unless recover is set, in which case the damaged file is set
// aside as a timestamped backup and the shard starts empty.
func (w *shardWriter) load(index int, recoverCorrupt bool) (map[string]string, error) {
	path := w.path(index)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read shard %d: %w", index, err)
	}

	m, err := w.codec.Decode(data)
	if err != nil {
		if de, ok := err.(*codec.DecodeError); ok {
			de.Path = path
		}
		if !recoverCorrupt {
			return nil, err
		}

		backup := fmt.Sprintf("%s.backup%s", path, time.Now().Format("2006-01-02_150405"))
		w.logger.Error("Could not load shard %d from %s, moving aside to %s: %v", index, path, backup, err)
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, fmt.Errorf("back up corrupt shard %d: %w", index, renameErr)
		}
		return make(map[string]string), nil
	}
	return m, nil
}
