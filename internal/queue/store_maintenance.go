package queue

import (
	"context"
	"fmt"
)

// Stats returns job counts per status. Every status is present in the map.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		stats[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

// HasJobs reports whether any job exists.
func (s *Store) HasJobs(ctx context.Context) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM jobs)`)
}

// CanConvert reports whether a batch run would have work and may start now.
func (s *Store) CanConvert(ctx context.Context) (bool, error) {
	if s.Batch().Running {
		return false, nil
	}
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE status = ?)`, StatusPending)
}

// CanDownload reports whether at least one job has converted output.
func (s *Store) CanDownload(ctx context.Context) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE status = ?)`, StatusConverted)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found int
	if err := s.db.QueryRowContext(ensureContext(ctx), query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("query existence: %w", err)
	}
	return found != 0, nil
}
