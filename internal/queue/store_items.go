package queue

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CreateJobs registers every accepted file as a pending job with the default
// format and returns how many were accepted. Files without a .ttf or .otf
// extension are skipped silently.
func (s *Store) CreateJobs(ctx context.Context, files []SourceFile) (int, error) {
	accepted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := timestamp()
		for _, file := range files {
			if !Accepts(file.Name) {
				continue
			}
			name := filepath.Base(strings.TrimSpace(file.Name))
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO jobs (id, name, size, format, status, error_message, source, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
				uuid.NewString(),
				name,
				len(file.Data),
				s.defaultFormat,
				StatusPending,
				nonNilBytes(file.Data),
				now,
				now,
			); err != nil {
				return fmt.Errorf("insert job %s: %w", name, err)
			}
			accepted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return accepted, nil
}

// Get returns a job including its source bytes.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	return loadJob(ensureContext(ctx), s.db, id)
}

// List returns every job in insertion order. Source bytes are not loaded.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		return queryJobs(ctx, s.db, "")
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	return queryJobs(ctx, s.db, "WHERE status IN ("+strings.Join(placeholders, ",")+")", args...)
}

// Pending returns jobs waiting for conversion in processing order.
func (s *Store) Pending(ctx context.Context) ([]*Job, error) {
	return s.List(ctx, StatusPending)
}

// Converted returns jobs with artifacts in insertion order.
func (s *Store) Converted(ctx context.Context) ([]*Job, error) {
	return s.List(ctx, StatusConverted)
}

// Remove deletes a job and its artifacts.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ensureContext(ctx), `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClearAll deletes every job.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ensureContext(ctx), `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// BLOB columns are NOT NULL; a nil slice would bind as NULL.
func nonNilBytes(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
