package bench

import (
	"os"
	"testing"
	"time"

	"shardkv/internal/logger"
	"shardkv/internal/store"
)

func benchLogger() *logger.Logger {
	return logger.New(os.Stderr, logger.LevelError, "[bench-test]")
}

func TestRunnerMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()

	workers := 4
	r := NewRunner(s, workers, 100*time.Millisecond, Unthrottled, benchLogger())
	r.SetSeed(42)

	all, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(all) != workers {
		t.Fatalf("Got %d stats, want %d", len(all), workers)
	}

	for _, st := range all {
		if st.Ops == 0 {
			t.Fatalf("Worker %d did no work", st.Worker)
		}
		if st.Runtime < 100*time.Millisecond {
			t.Fatalf("Worker %d runtime %v shorter than budget", st.Worker, st.Runtime)
		}
	}

	summary, err := Summarize(all)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.TotalOps == 0 || summary.TotalOpsPerSec == 0 {
		t.Fatalf("Empty summary: %+v", summary)
	}
}

func TestRunnerSurfacesStoreErrors(t *testing.T) {
	s := store.NewMemoryStore()
	s.Close() // every operation now fails

	r := NewRunner(s, 2, 50*time.Millisecond, Unthrottled, benchLogger())
	if _, err := r.Run(); err == nil {
		t.Fatal("Run succeeded against a closed store")
	}
}

func TestPatternNames(t *testing.T) {
	for _, name := range []string{"bursty", "consistent", "unthrottled"} {
		if got := PatternFromName(name).String(); got != name {
			t.Fatalf("PatternFromName(%q).String() = %q", name, got)
		}
	}
}
