package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"woffsmith/internal/config"
	"woffsmith/internal/container"
	"woffsmith/internal/logging"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("transcoder closed")
	// ErrDuplicateID is returned when a request reuses an in-flight ID.
	ErrDuplicateID = errors.New("duplicate request id")
)

// Pool is a fixed set of worker goroutines started on first use.
type Pool struct {
	size    int
	encoder Encoder
	logger  *slog.Logger

	requests chan Request
	results  chan Response
	done     chan struct{}

	mu      sync.Mutex
	pending map[string]chan Response
	started bool
	closed  bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool constructs a pool with size workers. Sizes below one are raised to one.
func NewPool(size int, enc Encoder, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if enc == nil {
		enc = container.DefaultEncoder()
	}
	return &Pool{
		size:     size,
		encoder:  enc,
		logger:   logging.NewComponentLogger(logger, "transcoder"),
		requests: make(chan Request),
		results:  make(chan Response, size),
		done:     make(chan struct{}),
		pending:  make(map[string]chan Response),
	}
}

// NewFromConfig builds a pool whose encoder and size follow cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Pool {
	if cfg == nil {
		return NewPool(1, nil, logger)
	}
	enc := container.Encoder{
		WOFFLevel:    cfg.Encoder.WOFFLevel,
		WOFF2Level:   cfg.Encoder.WOFF2Level,
		ValidateSfnt: cfg.Encoder.ValidateSfnt,
	}
	return NewPool(cfg.Workflow.Concurrency, enc, logger)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit sends req to a worker and waits for its response. A transport error
// is returned only when the pool is closed or ctx ends; conversion failures
// arrive as error responses. When ctx ends first the worker still finishes
// the request and its response is dropped.
func (p *Pool) Submit(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Kind == "" {
		req.Kind = KindConvert
	}
	req.Source = bytes.Clone(req.Source)

	reply := make(chan Response, 1)
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Response{}, ErrClosed
	}
	if _, exists := p.pending[req.ID]; exists {
		p.mu.Unlock()
		return Response{}, fmt.Errorf("%w: %s", ErrDuplicateID, req.ID)
	}
	p.pending[req.ID] = reply
	p.startLocked()
	p.mu.Unlock()

	select {
	case p.requests <- req:
	case <-ctx.Done():
		p.forget(req.ID)
		return Response{}, ctx.Err()
	case <-p.done:
		p.forget(req.ID)
		return Response{}, ErrClosed
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		p.forget(req.ID)
		p.logger.Debug("request abandoned",
			logging.String(logging.FieldRequestID, req.ID),
			logging.String("file", req.FileName),
		)
		return Response{}, ctx.Err()
	case <-p.done:
		p.forget(req.ID)
		return Response{}, ErrClosed
	}
}

// Close stops all workers. It is safe to call more than once.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.done)
		p.mu.Unlock()
		p.wg.Wait()
		p.logger.Debug("transcoder stopped")
	})
	return nil
}

func (p *Pool) startLocked() {
	if p.started {
		return
	}
	p.started = true
	p.wg.Add(p.size + 1)
	for i := 0; i < p.size; i++ {
		go p.work()
	}
	go p.dispatch()
	p.logger.Debug("transcoder started", logging.Int("workers", p.size))
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case req := <-p.requests:
			resp := handle(p.encoder, p.logger, req)
			select {
			case p.results <- resp:
			case <-p.done:
				return
			}
		case <-p.done:
			return
		}
	}
}

// dispatch routes responses to their submitters by ID.
func (p *Pool) dispatch() {
	defer p.wg.Done()
	for {
		select {
		case resp := <-p.results:
			p.mu.Lock()
			reply, ok := p.pending[resp.ID]
			delete(p.pending, resp.ID)
			p.mu.Unlock()
			if !ok {
				p.logger.Debug("discarding late response", logging.String(logging.FieldRequestID, resp.ID))
				continue
			}
			reply <- resp
		case <-p.done:
			return
		}
	}
}

func (p *Pool) forget(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}
