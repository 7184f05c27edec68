package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"woffsmith/internal/logging"
)

// RunAll converts every job that is pending when the call starts, in
// insertion order, keeping up to Concurrency jobs in flight. A failed job
// never stops the run. The batch state is reset on every return path.
//
// When ctx is cancelled no further jobs are dispatched, in-flight jobs are
// returned to pending, and ctx.Err() is returned with the summary so far.
func (m *Manager) RunAll(ctx context.Context) (RunSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	pending, err := m.registry.Pending(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if len(pending) == 0 {
		return RunSummary{}, ErrNothingPending
	}
	if err := m.registry.BeginRun(); err != nil {
		return RunSummary{}, err
	}
	defer func() {
		m.registry.EndRun()
		m.events.Publish(Event{Type: EventTypeProgress, Running: false, Progress: 0})
	}()

	tc, err := m.acquireTranscoder()
	if err != nil {
		return RunSummary{}, err
	}

	total := len(pending)
	m.events.Publish(Event{Type: EventTypeProgress, Running: true, Progress: 0})
	m.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("jobs", total),
		logging.Int("concurrency", m.concurrency),
	)

	var (
		summary   = RunSummary{Total: total}
		summaryMu sync.Mutex
		completed atomic.Int64
		wg        sync.WaitGroup
		sampler   = logging.NewProgressSampler(10)
		slots     = make(chan struct{}, m.concurrency)
	)

	record := func(result jobResult) {
		summaryMu.Lock()
		defer summaryMu.Unlock()

		switch result.outcome {
		case outcomeConverted:
			summary.Converted++
		case outcomeFailed:
			summary.Failed++
		case outcomeRequeued:
			summary.Requeued++
		case outcomeSkipped:
			summary.Skipped++
		}
		summary.InputBytes += result.inputBytes
		summary.OutputBytes += result.outputBytes

		if !result.completed() {
			return
		}
		done := completed.Add(1)
		percent := float64(done) / float64(total) * 100
		m.registry.SetProgress(percent)
		progress := m.registry.Batch().Progress
		m.events.Publish(Event{Type: EventTypeProgress, Running: true, Progress: progress})
		if sampler.ShouldLog(int(progress)) {
			m.logger.Info("batch progress",
				logging.String(logging.FieldEventType, "batch_progress"),
				logging.Int64("completed", done),
				logging.Int("total", total),
				logging.Int("percent", int(progress)),
			)
		}
	}

dispatch:
	for _, job := range pending {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
		if ctx.Err() != nil {
			<-slots
			break dispatch
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-slots }()
			record(m.convertJob(ctx, tc, id))
		}(job.ID)
	}
	wg.Wait()

	summary.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		logging.WarnWithContext(m.logger, "batch cancelled", "batch_cancelled",
			logging.Int("converted", summary.Converted),
			logging.Int("failed", summary.Failed),
			logging.Int("requeued", summary.Requeued),
			logging.String(logging.FieldImpact, "remaining jobs stay pending"),
			logging.String(logging.FieldErrorHint, "run convert again to finish the batch"),
		)
		return summary, err
	}

	m.logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("converted", summary.Converted),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int64("input_bytes", summary.InputBytes),
		logging.Int64("output_bytes", summary.OutputBytes),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}
