// Package storage owns the persisted market-data table: a single
// file-backed SQLite database whose schema is asserted on open and only
// ever appended to afterwards. No other package touches the table file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"crypto-price-pipeline/internal/model"
)

// Config locates the database file.
type Config struct {
	Path string `mapstructure:"path"`
}

// StorageError wraps any failure to open, write, or close the table.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Writer is the subset of the store the pipeline appends through.
type Writer interface {
	Append(ctx context.Context, records []model.RawRecord) (int64, error)
	Path() string
}

// Store is the exclusive owner of the validated_crypto_data table.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger

	// mu serialises appends within this process; cross-process contention
	// is left to SQLite's file locking plus busy_timeout.
	mu sync.Mutex
}

// Open creates the data directory if needed, opens the database file, and
// asserts the table schema. Opening an existing file with the expected
// schema is a no-op on the schema.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("database path is required")}
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StorageError{Op: "open", Err: fmt.Errorf("create data dir: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("ping: %w", err)}
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("set busy_timeout: %w", err)}
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("assert schema: %w", err)}
	}

	return &Store{
		db:     db,
		path:   cfg.Path,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}

// Path returns the table handle: the database file location.
func (s *Store) Path() string { return s.path }

// Append normalises the records onto the fixed column set and writes them
// in one transaction: either every record lands or none do. An empty input
// leaves the table untouched. It returns the table's total row count after
// the write.
func (s *Store) Append(ctx context.Context, records []model.RawRecord) (int64, error) {
	if len(records) == 0 {
		return s.Count(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &StorageError{Op: "append", Err: fmt.Errorf("begin tx: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, &StorageError{Op: "append", Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rowValues(rec)...); err != nil {
			_ = tx.Rollback()
			return 0, &StorageError{Op: "append", Err: fmt.Errorf("insert record %d: %w", i, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StorageError{Op: "append", Err: fmt.Errorf("commit: %w", err)}
	}

	total, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("inserted", len(records)).
		Int64("total_rows", total).
		Str("path", s.path).
		Msg("appended validated records")

	return total, nil
}

// Count reports the current total row count of the table.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, countRecordsSQL).Scan(&count); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return count, nil
}

var _ Writer = (*Store)(nil)
