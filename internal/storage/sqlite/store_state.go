package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ironlog/ironlog/internal/storage"
)

// LoadAppState returns the persisted application-state blob. ok is false on
// a fresh store.
func (s *Store) LoadAppState(ctx context.Context) ([]byte, bool, error) {
	if !s.open() {
		return nil, false, storage.ErrStorageUnavailable
	}
	var payload string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		if storage.IsMissingRelation(err) {
			return nil, false, nil
		}
		return nil, false, &storage.QueryExecutionError{Op: "load app state", Err: err}
	}
	return []byte(payload), true, nil
}

// SaveAppState replaces the persisted application-state blob.
func (s *Store) SaveAppState(ctx context.Context, blob []byte) error {
	if !s.open() {
		return storage.ErrStorageUnavailable
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO app_state (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(blob), toMillis(s.now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("save app state: %w", err)
	}
	return nil
}

var _ storage.AppStateStore = (*Store)(nil)
