package queue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"woffsmith/internal/container"
)

// SetFormat changes the target format of a job. A converted or failed job
// returns to pending and loses its result. Converting jobs are rejected with
// ErrJobBusy.
func (s *Store) SetFormat(ctx context.Context, id string, format container.Format) error {
	if !format.Valid() {
		return fmt.Errorf("set format: %w: %q", container.ErrUnsupportedFormat, string(format))
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(from, EventReset) {
			return fmt.Errorf("set format of %s: %w", id, ErrJobBusy)
		}
		to, err := transition(id, from, EventReset)
		if err != nil {
			return err
		}
		if err := clearResult(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET format = ?, status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			format, to, timestamp(), id,
		); err != nil {
			return fmt.Errorf("update format of %s: %w", id, err)
		}
		return nil
	})
}

// Dispatch moves a job to converting, discarding any previous result, and
// returns it with its source bytes.
func (s *Store) Dispatch(ctx context.Context, id string) (*Job, error) {
	var job *Job
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		to, err := transition(id, from, EventDispatch)
		if err != nil {
			return err
		}
		if err := clearResult(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			to, timestamp(), id,
		); err != nil {
			return fmt.Errorf("dispatch %s: %w", id, err)
		}
		job, err = loadJob(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ApplyResult records the outcome of a conversion. It is the only writer of
// converted and error statuses.
func (s *Store) ApplyResult(ctx context.Context, id string, outcome Outcome) error {
	event := EventSucceed
	if outcome.Failed {
		event = EventFail
	} else if len(outcome.Artifacts) == 0 {
		return fmt.Errorf("apply result to %s: %w", id, ErrNoArtifacts)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		to, err := transition(id, from, event)
		if err != nil {
			return err
		}

		if outcome.Failed {
			msg := strings.TrimSpace(outcome.Message)
			if msg == "" {
				msg = DefaultErrorMessage
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
				to, msg, timestamp(), id,
			); err != nil {
				return fmt.Errorf("record failure of %s: %w", id, err)
			}
			return nil
		}

		for i, artifact := range outcome.Artifacts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO artifacts (job_id, position, format, name, data) VALUES (?, ?, ?, ?, ?)`,
				id, i, artifact.Format, artifact.Name, nonNilBytes(artifact.Data),
			); err != nil {
				return fmt.Errorf("store artifact %s of %s: %w", artifact.Name, id, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			to, timestamp(), id,
		); err != nil {
			return fmt.Errorf("record success of %s: %w", id, err)
		}
		return nil
	})
}

// Requeue returns a converting job to pending without a result.
func (s *Store) Requeue(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		to, err := transition(id, from, EventRequeue)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
			to, timestamp(), id,
		); err != nil {
			return fmt.Errorf("requeue %s: %w", id, err)
		}
		return nil
	})
}

// ResetConverted returns every converted job to pending and discards its
// artifacts.
func (s *Store) ResetConverted(ctx context.Context) (int64, error) {
	to, err := nextStatus(StatusConverted, EventReset)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM artifacts WHERE job_id IN (SELECT id FROM jobs WHERE status = ?)`,
			StatusConverted,
		); err != nil {
			return fmt.Errorf("discard artifacts: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
			to, timestamp(), StatusConverted,
		)
		if err != nil {
			return fmt.Errorf("reset converted jobs: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func clearResult(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE job_id = ?`, id); err != nil {
		return fmt.Errorf("discard artifacts of %s: %w", id, err)
	}
	return nil
}
