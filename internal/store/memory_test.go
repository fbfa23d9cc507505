package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreBasics(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok, err := s.Get("a"); err != nil || !ok || v != "1" {
		t.Fatalf("Get(a) = %q ok=%v err=%v, want \"1\"", v, ok, err)
	}

	if err := s.Set("a", "2"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if v, _, _ := s.Get("a"); v != "2" {
		t.Fatalf("Get after overwrite = %q, want \"2\"", v)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Fatal("Key survived Delete")
	}
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete of absent key errored: %v", err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.Set("a", "1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close = %v, want ErrClosed", err)
	}
	if _, _, err := s.Get("a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Get after Close = %v, want ErrClosed", err)
	}
	if err := s.Delete("a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Delete after Close = %v, want ErrClosed", err)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()

	workers := 8
	perWorker := 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if err := s.Set(key, "v"); err != nil {
					t.Errorf("Set(%s) failed: %v", key, err)
					return
				}
				if _, ok, _ := s.Get(key); !ok {
					t.Errorf("Get(%s) missed own write", key)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
