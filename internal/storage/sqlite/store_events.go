package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
)

// Append persists one event with a fresh UUIDv7 id and the current UTC
// timestamp. A durability checkpoint is enqueued after the insert and not
// awaited: a crash between insert and checkpoint can lose the most recent
// writes, which is the accepted trade-off for write latency.
func (s *Store) Append(ctx context.Context, draft storage.Draft) (event.Event, error) {
	events, err := s.AppendBatch(ctx, []storage.Draft{draft})
	if err != nil {
		return event.Event{}, err
	}
	return events[0], nil
}

// AppendBatch persists the drafts in one transaction. Ids are strictly
// increasing in slice order; all drafts share the batch timestamp.
func (s *Store) AppendBatch(ctx context.Context, drafts []storage.Draft) ([]event.Event, error) {
	if !s.open() {
		return nil, storage.ErrStorageUnavailable
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	for _, draft := range drafts {
		if !draft.Type.IsValid() {
			return nil, fmt.Errorf("event type is required")
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := s.now().UTC().Truncate(time.Millisecond)
	events := make([]event.Event, 0, len(drafts))
	for _, draft := range drafts {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("new event id: %w", err)
		}
		payload := draft.Payload
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		evt := event.Event{
			ID:        id.String(),
			CreatedAt: createdAt,
			Type:      draft.Type,
			Payload:   payload,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (event_id, created_at, event_type, payload) VALUES (?, ?, ?, ?)`,
			evt.ID, toMillis(evt.CreatedAt), string(evt.Type), string(evt.Payload),
		); err != nil {
			return nil, fmt.Errorf("insert event: %w", err)
		}
		events = append(events, evt)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}

	// Fire-and-forget: the write path does not wait for durability.
	s.cp.Request(events[len(events)-1].ID)
	return events, nil
}

// Scan invokes fn for every event matching the filter. Storage-level order
// is unspecified; callers impose ordering.
func (s *Store) Scan(ctx context.Context, filter storage.ScanFilter, fn func(event.Event) error) error {
	if !s.open() {
		return storage.ErrStorageUnavailable
	}

	query := `SELECT event_id, created_at, event_type, payload FROM events`
	var conds []string
	var args []any
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, "event_type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, toMillis(filter.Since))
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, toMillis(filter.Until))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return &storage.QueryExecutionError{Op: "scan events", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var evt event.Event
		var createdAt int64
		var eventType, payload string
		if err := rows.Scan(&evt.ID, &createdAt, &eventType, &payload); err != nil {
			return &storage.QueryExecutionError{Op: "scan events", Err: err}
		}
		evt.CreatedAt = fromMillis(createdAt)
		evt.Type = event.Type(eventType)
		evt.Payload = []byte(payload)
		if err := fn(evt); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &storage.QueryExecutionError{Op: "scan events", Err: err}
	}
	return nil
}

// EventCount reports the total number of events in the log.
func (s *Store) EventCount(ctx context.Context) (int64, error) {
	if !s.open() {
		return 0, storage.ErrStorageUnavailable
	}
	var count int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		if storage.IsMissingRelation(err) {
			return 0, nil
		}
		return 0, &storage.QueryExecutionError{Op: "count events", Err: err}
	}
	return count, nil
}

// ExistingIDs returns the set of event ids already present in the log.
func (s *Store) ExistingIDs(ctx context.Context) (map[string]bool, error) {
	if !s.open() {
		return nil, storage.ErrStorageUnavailable
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT event_id FROM events`)
	if err != nil {
		return nil, &storage.QueryExecutionError{Op: "list event ids", Err: err}
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &storage.QueryExecutionError{Op: "list event ids", Err: err}
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.QueryExecutionError{Op: "list event ids", Err: err}
	}
	return ids, nil
}

// ImportEvents inserts pre-existing events preserving ids and timestamps.
// All-or-nothing: any failure rolls back the whole batch.
func (s *Store) ImportEvents(ctx context.Context, events []event.Event) error {
	if !s.open() {
		return storage.ErrStorageUnavailable
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (event_id, created_at, event_type, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, evt := range events {
		if strings.TrimSpace(evt.ID) == "" {
			return fmt.Errorf("import event: missing event id")
		}
		if _, err := stmt.ExecContext(ctx,
			evt.ID, toMillis(evt.CreatedAt), string(evt.Type), string(evt.Payload),
		); err != nil {
			return fmt.Errorf("import event %s: %w", evt.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.cp.Request(events[len(events)-1].ID)
	return nil
}

var _ storage.EventStore = (*Store)(nil)
