package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"woffsmith/internal/container"
)

const jobColumns = "id, seq, name, size, format, status, error_message, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner, extra ...any) (*Job, error) {
	var (
		id           string
		seq          int64
		name         string
		size         int64
		formatStr    string
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	dest := []any{&id, &seq, &name, &size, &formatStr, &statusStr, &errorMessage, &createdRaw, &updatedRaw}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	status, ok := ParseStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("job %s has unknown status %q", id, statusStr)
	}

	job := &Job{
		ID:           id,
		Seq:          seq,
		Name:         name,
		Size:         size,
		Format:       container.Format(formatStr),
		Status:       status,
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty time")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// queryJobs runs a job query and attaches artifacts. Rows are fully drained
// before artifacts are loaded because the store has a single connection.
func queryJobs(ctx context.Context, q querier, where string, args ...any) ([]*Job, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+jobColumns+" FROM jobs "+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close job rows: %w", err)
	}

	if err := attachArtifacts(ctx, q, jobs, ""); err != nil {
		return nil, err
	}
	return jobs, nil
}

// attachArtifacts loads artifacts for converted jobs; onlyID narrows the query
// to a single job.
func attachArtifacts(ctx context.Context, q querier, jobs []*Job, onlyID string) error {
	byID := make(map[string]*Job, len(jobs))
	for _, job := range jobs {
		if job.Status == StatusConverted {
			byID[job.ID] = job
		}
	}
	if len(byID) == 0 {
		return nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT a.job_id, a.format, a.name, a.data
         FROM artifacts a JOIN jobs j ON j.id = a.job_id
         WHERE j.status = ? AND (? = '' OR a.job_id = ?)
         ORDER BY j.seq, a.position`,
		StatusConverted, onlyID, onlyID,
	)
	if err != nil {
		return fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID  string
			format string
			name   string
			data   []byte
		)
		if err := rows.Scan(&jobID, &format, &name, &data); err != nil {
			return fmt.Errorf("scan artifact: %w", err)
		}
		if job, ok := byID[jobID]; ok {
			job.Artifacts = append(job.Artifacts, Artifact{
				Format: container.Format(format),
				Name:   name,
				Data:   data,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate artifacts: %w", err)
	}
	return nil
}

// loadJob reads one job including its source bytes.
func loadJob(ctx context.Context, q querier, id string) (*Job, error) {
	var source []byte
	row := q.QueryRowContext(ctx, "SELECT "+jobColumns+", source FROM jobs WHERE id = ?", id)
	job, err := scanJob(row, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	job.Source = source
	if err := attachArtifacts(ctx, q, []*Job{job}, id); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func currentStatus(ctx context.Context, q querier, id string) (Status, error) {
	var statusStr string
	err := q.QueryRowContext(ctx, "SELECT status FROM jobs WHERE id = ?", id).Scan(&statusStr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("read status of %s: %w", id, err)
	}
	return Status(statusStr), nil
}

// transition resolves the next status and tags a rejected edge with the job ID.
func transition(id string, from Status, event Event) (Status, error) {
	to, err := nextStatus(from, event)
	if err != nil {
		var te *TransitionError
		if errors.As(err, &te) {
			te.JobID = id
		}
		return "", err
	}
	return to, nil
}
