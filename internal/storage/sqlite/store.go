// Package sqlite provides the SQLite-backed event log store.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironlog/ironlog/internal/platform/storage/sqlitemigrate"
	"github.com/ironlog/ironlog/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the append-only event log
// and the serialized application state.
type Store struct {
	sqlDB *sql.DB
	cp    *Checkpointer
	now   func() time.Time
}

// Open opens and migrates an event log store at path. The returned store
// owns a background checkpointer; Close stops it.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	store.cp = newCheckpointer(sqlDB)
	return store, nil
}

// Close flushes pending checkpoints and releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	if s.cp != nil {
		s.cp.Stop()
	}
	return s.sqlDB.Close()
}

// Checkpointer exposes the background durability worker.
func (s *Store) Checkpointer() *Checkpointer {
	if s == nil {
		return nil
	}
	return s.cp
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) open() bool {
	return s != nil && s.sqlDB != nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
