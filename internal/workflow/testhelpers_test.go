package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"woffsmith/internal/config"
	"woffsmith/internal/logging"
	"woffsmith/internal/queue"
	"woffsmith/internal/testsupport"
	"woffsmith/internal/transcoder"
	"woffsmith/internal/workflow"
)

// recordingRegistry counts registry calls and keeps their order.
type recordingRegistry struct {
	*queue.Store

	mu    sync.Mutex
	calls []string
	apply int
}

func (r *recordingRegistry) note(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recordingRegistry) Dispatch(ctx context.Context, id string) (*queue.Job, error) {
	job, err := r.Store.Dispatch(ctx, id)
	if err == nil {
		r.note("dispatch:" + job.Name)
	}
	return job, err
}

func (r *recordingRegistry) ApplyResult(ctx context.Context, id string, outcome queue.Outcome) error {
	r.mu.Lock()
	r.apply++
	r.mu.Unlock()
	job, _ := r.Store.Get(ctx, id)
	err := r.Store.ApplyResult(ctx, id, outcome)
	if job != nil {
		r.note("apply:" + job.Name)
	}
	return err
}

func (r *recordingRegistry) applyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apply
}

func (r *recordingRegistry) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type harness struct {
	cfg      *config.Config
	store    *queue.Store
	registry *recordingRegistry
	manager  *workflow.Manager
}

func newHarness(t *testing.T, opts ...workflow.Option) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	registry := &recordingRegistry{Store: store}
	manager := workflow.NewManager(cfg, registry, logging.NewNop(), opts...)
	t.Cleanup(func() { _ = manager.Close() })
	return &harness{cfg: cfg, store: store, registry: registry, manager: manager}
}

func (h *harness) jobs(t *testing.T) map[string]*queue.Job {
	t.Helper()
	list, err := h.store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	byName := make(map[string]*queue.Job, len(list))
	for _, job := range list {
		byName[job.Name] = job
	}
	return byName
}

// fakeTranscoder answers requests through a function, bypassing the pool.
type fakeTranscoder struct {
	handle func(ctx context.Context, req transcoder.Request) (transcoder.Response, error)

	mu     sync.Mutex
	closed int
}

func (f *fakeTranscoder) Submit(ctx context.Context, req transcoder.Request) (transcoder.Response, error) {
	return f.handle(ctx, req)
}

func (f *fakeTranscoder) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func okResponse(req transcoder.Request) transcoder.Response {
	return transcoder.Response{
		ID:        req.ID,
		Kind:      transcoder.KindSuccess,
		Container: []byte(fmt.Sprintf("container:%s", req.FileName)),
		FileName:  req.FileName + "." + string(req.Format),
		Format:    req.Format,
	}
}
