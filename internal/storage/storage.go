// Package storage defines the persistence contracts for the append-only
// event log and the error taxonomy shared by every consumer.
package storage

import (
	"context"
	"time"

	"github.com/ironlog/ironlog/internal/event"
)

// Draft is an event awaiting an identity. Append assigns the id and
// timestamp; callers only choose the type and payload.
type Draft struct {
	Type    event.Type
	Payload []byte
}

// ScanFilter narrows a log scan. Zero values mean "no constraint".
type ScanFilter struct {
	// Types restricts the scan to the given event types.
	Types []event.Type
	// Since / Until bound created_at (inclusive since, exclusive until).
	Since time.Time
	Until time.Time
}

// EventAppender appends immutable events to the log.
type EventAppender interface {
	// Append persists one event with a fresh time-ordered id and the current
	// timestamp and returns the materialized record. A durability checkpoint
	// is scheduled asynchronously; completion is not awaited.
	Append(ctx context.Context, draft Draft) (event.Event, error)
	// AppendBatch persists the drafts in one transaction, ids strictly
	// increasing in slice order.
	AppendBatch(ctx context.Context, drafts []Draft) ([]event.Event, error)
}

// EventScanner reads the log. Storage-level order is unspecified; callers
// impose ordering on the events they collect.
type EventScanner interface {
	// Scan invokes fn for every event matching the filter. A non-nil error
	// from fn stops the scan and is returned verbatim.
	Scan(ctx context.Context, filter ScanFilter, fn func(event.Event) error) error
	// EventCount reports the total number of events in the log.
	EventCount(ctx context.Context) (int64, error)
}

// EventImporter inserts pre-existing events, preserving their original ids
// and timestamps. Used only by backup restore.
type EventImporter interface {
	// ExistingIDs returns the set of event ids already present.
	ExistingIDs(ctx context.Context) (map[string]bool, error)
	// ImportEvents inserts the given events in one transaction. The caller
	// guarantees the ids are not already present.
	ImportEvents(ctx context.Context, events []event.Event) error
}

// EventStore is the full event-log contract.
type EventStore interface {
	EventAppender
	EventScanner
	EventImporter
}

// AppStateStore persists the serialized application-state object.
type AppStateStore interface {
	// LoadAppState returns the persisted state blob, or ok=false on a fresh
	// store.
	LoadAppState(ctx context.Context) (blob []byte, ok bool, err error)
	// SaveAppState replaces the persisted state blob.
	SaveAppState(ctx context.Context, blob []byte) error
}
