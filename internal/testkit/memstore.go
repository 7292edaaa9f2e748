// Package testkit provides in-memory test doubles for the storage
// contracts.
package testkit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
)

// MemStore is an in-memory event store. Scan yields events in insertion
// order by default; SetScanOrder lets determinism tests replay the same log
// in arbitrary storage-level orders.
type MemStore struct {
	mu     sync.Mutex
	events []event.Event
	order  []int
	clock  time.Time
	seq    int

	state   []byte
	stateOK bool
}

// NewMemStore creates an empty store with a fixed starting clock.
func NewMemStore() *MemStore {
	return &MemStore{clock: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
}

// SetClock pins the timestamp assigned to the next append.
func (m *MemStore) SetClock(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = t.UTC()
}

// SetScanOrder overrides the order Scan yields events in. Indices refer to
// insertion order.
func (m *MemStore) SetScanOrder(order []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = order
}

// Append assigns a synthetic monotonic id and the pinned clock.
func (m *MemStore) Append(ctx context.Context, draft storage.Draft) (event.Event, error) {
	events, err := m.AppendBatch(ctx, []storage.Draft{draft})
	if err != nil {
		return event.Event{}, err
	}
	return events[0], nil
}

// AppendBatch appends drafts with strictly increasing synthetic ids.
func (m *MemStore) AppendBatch(_ context.Context, drafts []storage.Draft) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Event, 0, len(drafts))
	for _, draft := range drafts {
		m.seq++
		evt := event.Event{
			ID:        fmt.Sprintf("evt-%06d", m.seq),
			CreatedAt: m.clock,
			Type:      draft.Type,
			Payload:   draft.Payload,
		}
		m.events = append(m.events, evt)
		out = append(out, evt)
	}
	return out, nil
}

// Scan yields matching events in the configured order.
func (m *MemStore) Scan(_ context.Context, filter storage.ScanFilter, fn func(event.Event) error) error {
	m.mu.Lock()
	events := make([]event.Event, 0, len(m.events))
	if m.order != nil {
		for _, i := range m.order {
			events = append(events, m.events[i])
		}
	} else {
		events = append(events, m.events...)
	}
	m.mu.Unlock()

	for _, evt := range events {
		if !matches(filter, evt) {
			continue
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
	return nil
}

// EventCount reports the number of stored events.
func (m *MemStore) EventCount(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

// ExistingIDs returns the stored event ids.
func (m *MemStore) ExistingIDs(context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(m.events))
	for _, evt := range m.events {
		ids[evt.ID] = true
	}
	return ids, nil
}

// ImportEvents stores pre-built events as-is.
func (m *MemStore) ImportEvents(_ context.Context, events []event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

// LoadAppState returns the saved state blob.
func (m *MemStore) LoadAppState(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.stateOK, nil
}

// SaveAppState replaces the saved state blob.
func (m *MemStore) SaveAppState(_ context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = append([]byte(nil), blob...)
	m.stateOK = true
	return nil
}

// MustAppend appends a typed payload at the given time, failing the caller
// on encode errors.
func (m *MemStore) MustAppend(eventType event.Type, payload event.Payload, at time.Time) event.Event {
	raw, err := event.Encode(payload)
	if err != nil {
		panic(err)
	}
	m.SetClock(at)
	evt, err := m.Append(context.Background(), storage.Draft{Type: eventType, Payload: raw})
	if err != nil {
		panic(err)
	}
	return evt
}

// AppendRaw appends an arbitrary (possibly malformed) payload at the given
// time.
func (m *MemStore) AppendRaw(eventType event.Type, payload []byte, at time.Time) event.Event {
	m.SetClock(at)
	evt, err := m.Append(context.Background(), storage.Draft{Type: eventType, Payload: payload})
	if err != nil {
		panic(err)
	}
	return evt
}

func matches(filter storage.ScanFilter, evt event.Event) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if evt.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !filter.Since.IsZero() && evt.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !evt.CreatedAt.Before(filter.Until) {
		return false
	}
	return true
}

var _ storage.EventStore = (*MemStore)(nil)
var _ storage.AppStateStore = (*MemStore)(nil)
