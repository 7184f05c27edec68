package queue

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"woffsmith/internal/config"
	"woffsmith/internal/container"
)

// Store manages jobs backed by an in-memory SQLite database.
type Store struct {
	db            *sql.DB
	defaultFormat container.Format

	batchMu sync.Mutex
	batch   Batch
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Open creates an empty registry. The database exists only in memory and is
// discarded by Close.
func Open(cfg *config.Config) (*Store, error) {
	format := container.FormatWOFF2
	if cfg != nil {
		parsed, err := container.ParseFormat(cfg.Convert.DefaultFormat)
		if err != nil {
			return nil, fmt.Errorf("default format: %w", err)
		}
		format = parsed
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, defaultFormat: format}
	if err := store.createSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// DefaultFormat returns the format assigned to new jobs.
func (s *Store) DefaultFormat() container.Format {
	return s.defaultFormat
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
