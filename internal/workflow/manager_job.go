package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"woffsmith/internal/logging"
	"woffsmith/internal/queue"
	"woffsmith/internal/transcoder"
)

type jobOutcome int

const (
	outcomeNotStarted jobOutcome = iota
	outcomeConverted
	outcomeFailed
	outcomeRequeued
	outcomeSkipped
)

type jobResult struct {
	outcome     jobOutcome
	inputBytes  int64
	outputBytes int64
	err         error
}

// completed reports whether the job counts toward run progress.
func (r jobResult) completed() bool {
	return r.outcome == outcomeConverted || r.outcome == outcomeFailed || r.outcome == outcomeSkipped
}

// ConvertOne converts a single job outside a batch run. The result is recorded
// in the registry; a conversion failure is also returned.
func (m *Manager) ConvertOne(ctx context.Context, id string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tc, err := m.acquireTranscoder()
	if err != nil {
		return err
	}
	result := m.convertJob(ctx, tc, id)
	switch result.outcome {
	case outcomeRequeued:
		return ctx.Err()
	default:
		return result.err
	}
}

// convertJob runs dispatch, submit, and apply for one job. Once a job has been
// dispatched, exactly one of ApplyResult or Requeue is called for it.
func (m *Manager) convertJob(ctx context.Context, tc Transcoder, id string) jobResult {
	jobCtx := logging.WithJobID(ctx, id)
	logger := logging.WithContext(jobCtx, m.logger)

	if err := ctx.Err(); err != nil {
		return jobResult{outcome: outcomeNotStarted, err: err}
	}
	job, err := m.registry.Dispatch(jobCtx, id)
	if err != nil {
		if ctx.Err() != nil {
			return jobResult{outcome: outcomeNotStarted, err: ctx.Err()}
		}
		logging.WarnWithContext(logger, "job could not be dispatched", "job_skipped",
			logging.Error(err),
			logging.String(logging.FieldImpact, "job left out of this run"),
			logging.String(logging.FieldErrorHint, "the job was removed or changed while the run was starting"),
		)
		m.events.Publish(Event{JobID: id, Type: EventTypeError, Message: err.Error()})
		return jobResult{outcome: outcomeSkipped, err: err}
	}

	m.events.Publish(Event{JobID: id, Type: EventTypeStatus, Status: job.Status, FileName: job.Name, Format: job.Format})
	logger.Debug("job dispatched",
		logging.String(logging.FieldEventType, "job_dispatched"),
		logging.String("file", job.Name),
		logging.String(logging.FieldFormat, job.Format.String()),
	)

	requestID := uuid.NewString()
	resp, submitErr := tc.Submit(logging.WithRequestID(jobCtx, requestID), transcoder.Request{
		ID:       requestID,
		Kind:     transcoder.KindConvert,
		Source:   job.Source,
		Format:   job.Format,
		FileName: job.Name,
	})
	result := jobResult{inputBytes: job.Size}

	// Results are recorded even when the caller has just cancelled, so a
	// finished conversion is never lost.
	applyCtx := context.WithoutCancel(jobCtx)

	if submitErr != nil {
		if ctx.Err() != nil {
			if err := m.registry.Requeue(applyCtx, id); err != nil {
				logger.Error("failed to requeue cancelled job", logging.Error(err))
			}
			logger.Info("job returned to pending",
				logging.String(logging.FieldEventType, "job_requeued"),
				logging.String(logging.FieldRequestID, requestID),
			)
			m.events.Publish(Event{JobID: id, Type: EventTypeStatus, Status: queue.StatusPending, FileName: job.Name})
			result.outcome = outcomeRequeued
			result.err = ctx.Err()
			return result
		}
		resp = transcoder.Response{ID: requestID, Kind: transcoder.KindError, FileName: job.Name, Message: submitErr.Error()}
	}

	if resp.OK() {
		artifact := queue.Artifact{Format: resp.Format, Name: resp.FileName, Data: resp.Container}
		if err := m.registry.ApplyResult(applyCtx, id, queue.Success(artifact)); err != nil {
			return m.applyFailed(logger, id, err)
		}
		result.outcome = outcomeConverted
		result.outputBytes = int64(len(resp.Container))
		logger.Info("job converted",
			logging.String(logging.FieldEventType, "job_converted"),
			logging.String("file", resp.FileName),
			logging.String(logging.FieldFormat, resp.Format.String()),
			logging.Int64("input_bytes", result.inputBytes),
			logging.Int64("output_bytes", result.outputBytes),
		)
		m.events.Publish(Event{
			JobID:    id,
			Type:     EventTypeResult,
			Status:   queue.StatusConverted,
			FileName: resp.FileName,
			Format:   resp.Format,
			Bytes:    result.outputBytes,
		})
		return result
	}

	convErr := resp.Err()
	if submitErr != nil {
		convErr = errors.Join(convErr, submitErr)
	}
	message := strings.TrimSpace(resp.Message)
	if err := m.registry.ApplyResult(applyCtx, id, queue.Failure(message)); err != nil {
		return m.applyFailed(logger, id, err)
	}
	result.outcome = outcomeFailed
	result.err = convErr
	logging.WarnWithContext(logger, "job failed", "job_failed",
		logging.String("file", job.Name),
		logging.String(logging.FieldFormat, job.Format.String()),
		logging.String("reason", message),
		logging.String(logging.FieldImpact, "no output for this file"),
		logging.String(logging.FieldErrorHint, "check that the file is a valid TrueType or OpenType font"),
	)
	m.events.Publish(Event{JobID: id, Type: EventTypeStatus, Status: queue.StatusError, FileName: job.Name, Message: message})
	return result
}

// applyFailed handles a registry rejection of a result, typically because the
// job was removed while it was converting.
func (m *Manager) applyFailed(logger *slog.Logger, id string, err error) jobResult {
	logging.WarnWithContext(logger, "result could not be recorded", "apply_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "result discarded"),
		logging.String(logging.FieldErrorHint, "the job was removed during conversion"),
	)
	m.events.Publish(Event{JobID: id, Type: EventTypeError, Message: err.Error()})
	return jobResult{outcome: outcomeSkipped, err: err}
}
