package testsupport

import (
	"context"
	"testing"

	"woffsmith/internal/config"
	"woffsmith/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustCreateJobs registers files and returns the resulting jobs in order.
func MustCreateJobs(t testing.TB, store *queue.Store, files ...queue.SourceFile) []*queue.Job {
	t.Helper()

	ctx := context.Background()
	accepted, err := store.CreateJobs(ctx, files)
	if err != nil {
		t.Fatalf("CreateJobs: %v", err)
	}
	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) < accepted {
		t.Fatalf("expected at least %d jobs, found %d", accepted, len(jobs))
	}
	return jobs[len(jobs)-accepted:]
}
