package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"woffsmith/internal/archive"
	"woffsmith/internal/config"
	"woffsmith/internal/logging"
	"woffsmith/internal/queue"
	"woffsmith/internal/transcoder"
)

// ErrNothingPending is returned by RunAll when no job is waiting.
var ErrNothingPending = errors.New("no pending jobs")

// Registry is the subset of the job registry the manager drives.
type Registry interface {
	Pending(ctx context.Context) ([]*queue.Job, error)
	Converted(ctx context.Context) ([]*queue.Job, error)
	Dispatch(ctx context.Context, id string) (*queue.Job, error)
	ApplyResult(ctx context.Context, id string, outcome queue.Outcome) error
	Requeue(ctx context.Context, id string) error
	BeginRun() error
	SetProgress(percent float64)
	EndRun()
	Batch() queue.Batch
}

// Transcoder converts one request at a time per caller.
type Transcoder interface {
	Submit(ctx context.Context, req transcoder.Request) (transcoder.Response, error)
	Close() error
}

// RunSummary reports the outcome of a batch run.
type RunSummary struct {
	Total       int
	Converted   int
	Failed      int
	Requeued    int
	Skipped     int
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
}

// Manager coordinates conversion of queued jobs.
type Manager struct {
	cfg         *config.Config
	registry    Registry
	logger      *slog.Logger
	events      *EventBus
	concurrency int

	newTranscoder func() Transcoder

	mu         sync.Mutex
	transcoder Transcoder
	closed     bool
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithTranscoder injects the transcoder instead of building a pool from config.
func WithTranscoder(t Transcoder) Option {
	return func(m *Manager) {
		m.newTranscoder = func() Transcoder { return t }
	}
}

// WithConcurrency overrides the number of jobs in flight during RunAll.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// NewManager constructs a workflow manager. The transcoder is created on first
// use.
func NewManager(cfg *config.Config, registry Registry, logger *slog.Logger, opts ...Option) *Manager {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	m := &Manager{
		cfg:         cfg,
		registry:    registry,
		logger:      logger,
		events:      NewEventBus(cfg.Workflow.MaxEvents),
		concurrency: cfg.Workflow.Concurrency,
	}
	m.newTranscoder = func() Transcoder {
		return transcoder.NewFromConfig(cfg, logger)
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.concurrency < 1 {
		m.concurrency = 1
	}
	return m
}

// Events returns the bus carrying run events.
func (m *Manager) Events() *EventBus {
	return m.events
}

// Concurrency returns the number of jobs RunAll keeps in flight.
func (m *Manager) Concurrency() int {
	return m.concurrency
}

// BuildArchive bundles the artifacts of every converted job. It returns nil,
// nil when nothing has been converted.
func (m *Manager) BuildArchive(ctx context.Context) ([]byte, error) {
	jobs, err := m.registry.Converted(ctx)
	if err != nil {
		return nil, err
	}
	data, err := archive.Build(ctx, jobs)
	if err != nil {
		logging.ErrorWithContext(m.logger, "archive assembly failed", "archive_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry the download; converted jobs are unchanged"),
		)
		return nil, err
	}
	if data != nil {
		m.logger.Info("archive built",
			logging.String(logging.FieldEventType, "archive_built"),
			logging.Int("entries", len(archive.Entries(jobs))),
			logging.Int("bytes", len(data)),
		)
	}
	return data, nil
}

// Close releases the transcoder. It is safe to call on every exit path.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.transcoder == nil {
		return nil
	}
	err := m.transcoder.Close()
	m.transcoder = nil
	return err
}

func (m *Manager) acquireTranscoder() (Transcoder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, transcoder.ErrClosed
	}
	if m.transcoder == nil {
		m.transcoder = m.newTranscoder()
	}
	return m.transcoder, nil
}
