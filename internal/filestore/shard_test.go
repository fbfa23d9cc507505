package filestore

import (
	"reflect"
	"testing"
)

func TestShardDirtyFlag(t *testing.T) {
	s := newShard()
	if s.isDirty() {
		t.Fatal("New shard is dirty")
	}

	s.set("a", "1")
	if !s.isDirty() {
		t.Fatal("Set did not mark shard dirty")
	}

	snap := s.snapshot()
	if s.isDirty() {
		t.Fatal("Snapshot did not clear dirty flag")
	}
	if !reflect.DeepEqual(snap, map[string]string{"a": "1"}) {
		t.Fatalf("Snapshot = %v", snap)
	}

	if s.del("a") != true {
		t.Fatal("del of present key returned false")
	}
	if !s.isDirty() {
		t.Fatal("del did not mark shard dirty")
	}

	s.snapshot()
	if s.del("absent") {
		t.Fatal("del of absent key returned true")
	}
	if s.isDirty() {
		t.Fatal("del of absent key marked shard dirty")
	}
}

func TestShardSnapshotIsACopy(t *testing.T) {
	s := newShard()
	s.set("a", "1")

	snap := s.snapshot()
	s.set("a", "2")

	if snap["a"] != "1" {
		t.Fatalf("Snapshot tracked later mutation: %v", snap)
	}
	if v, _ := s.get("a"); v != "2" {
		t.Fatalf("Shard lost later mutation: %q", v)
	}
}

func TestShardReplace(t *testing.T) {
	s := newShard()
	s.replace(map[string]string{"x": "y"})

	if s.isDirty() {
		t.Fatal("replace marked shard dirty")
	}
	if v, ok := s.get("x"); !ok || v != "y" {
		t.Fatalf("get after replace = %q ok=%v", v, ok)
	}
}
