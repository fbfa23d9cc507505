package filestore

import "sync"

// shard is one file's worth of data: an in-memory map restricted to the
// keys that route here, plus a dirty flag set on every mutation and
// cleared when a snapshot is taken for persistence.
//
// The mutex guards both map and flag. It is shared between caller
// goroutines and persister goroutines; no other lock exists per shard.
type shard struct {
	mu    sync.RWMutex
	data  map[string]string
	dirty bool
}

func newShard() *shard {
	return &shard{data: make(map[string]string)}
}

// replace installs loaded contents at startup. Not safe after the
// backend starts serving.
func (s *shard) replace(m map[string]string) {
	s.data = m
	s.dirty = false
}

func (s *shard) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *shard) set(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.dirty = true
	s.mu.Unlock()
}

// del removes key and reports whether the shard changed.
func (s *shard) del(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	s.dirty = true
	return true
}

func (s *shard) isDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *shard) markDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// snapshot copies the current contents and clears the dirty flag. The
// copy is taken under the lock; serialization and file I/O happen on
// the caller's time, outside it.
func (s *shard) snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]string, len(s.data))
	for k, v := range s.data {
		m[k] = v
	}
	s.dirty = false
	return m
}

func (s *shard) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *shard) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
