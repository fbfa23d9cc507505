package filestore

import (
	"os"
	"testing"
	"time"

	"shardkv/internal/codec"
)

func TestSyncPersisterPeriodicFlush(t *testing.T) {
	w, shards := newTestWriter(t, 2)
	p := newSyncPersister(shards, w, 10*time.Millisecond, quietLogger())
	if err := p.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer p.close()

	shards[1].set("k", "v")

	deadline := time.Now().Add(2 * time.Second)
	for {
		data, err := os.ReadFile(w.path(1))
		if err == nil {
			m, derr := (codec.JSON{}).Decode(data)
			if derr == nil && m["k"] == "v" {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("Timer never flushed the dirty shard")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSyncPersisterCleanShardsNotRewritten(t *testing.T) {
	w, shards := newTestWriter(t, 1)
	p := newSyncPersister(shards, w, 5*time.Millisecond, quietLogger())
	if err := p.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer p.close()

	shards[0].set("k", "v")
	time.Sleep(50 * time.Millisecond)

	first, err := os.Stat(w.path(0))
	if err != nil {
		t.Fatalf("Shard file missing: %v", err)
	}

	// With no further mutations the dirty flag stays clear and the file
	// is left alone.
	time.Sleep(50 * time.Millisecond)
	second, err := os.Stat(w.path(0))
	if err != nil {
		t.Fatalf("Shard file missing: %v", err)
	}
	if !second.ModTime().Equal(first.ModTime()) {
		t.Fatal("Clean shard was rewritten")
	}
}

func TestSyncPersisterCloseFlushes(t *testing.T) {
	w, shards := newTestWriter(t, 1)
	p := newSyncPersister(shards, w, time.Hour, quietLogger())
	if err := p.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	shards[0].set("k", "v")
	if err := p.close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(w.path(0))
	if err != nil {
		t.Fatalf("Shard file missing after close: %v", err)
	}
	m, err := (codec.JSON{}).Decode(data)
	if err != nil || m["k"] != "v" {
		t.Fatalf("Shard file = %v (err=%v), want k=v", m, err)
	}
}
