// Package backup bulk-exports and imports the event log as a compressed
// columnar file. Import merges idempotently: only event ids not already
// present are inserted, so re-importing the same file imports zero events.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/event"
	"github.com/ironlog/ironlog/internal/storage"
	"github.com/klauspost/compress/zstd"
)

// FormatName identifies the backup file format.
const FormatName = "ironlog.events"

// FormatVersion is the current columnar layout version.
const FormatVersion = 1

// fileExtension is the backup filename suffix.
const fileExtension = ".ilbk"

// columns is the columnar payload: four parallel arrays, one entry per
// event, in created_at order.
type columns struct {
	EventID   []string          `json:"_event_id"`
	CreatedAt []int64           `json:"_created_at"`
	EventType []string          `json:"event_type"`
	Payload   []json.RawMessage `json:"payload"`
}

type file struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Columns    columns   `json:"columns"`
}

// rawFile defers column decoding so missing columns are reported by name.
type rawFile struct {
	Format     string                     `json:"format"`
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Columns    map[string]json.RawMessage `json:"columns"`
}

// Result reports the outcome of an import.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Filename returns the conventional backup filename for an export date.
func Filename(exportedAt time.Time) string {
	return "ironlog-backup-" + exportedAt.UTC().Format("2006-01-02") + fileExtension
}

// Export serializes the entire event log (all columns, created_at order)
// into w as a zstd-compressed columnar file.
func Export(ctx context.Context, store storage.EventScanner, w io.Writer, exportedAt time.Time) error {
	var events []event.Event
	err := store.Scan(ctx, storage.ScanFilter{}, func(evt event.Event) error {
		events = append(events, evt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})

	out := file{
		Format:     FormatName,
		Version:    FormatVersion,
		ExportedAt: exportedAt.UTC(),
	}
	for _, evt := range events {
		out.Columns.EventID = append(out.Columns.EventID, evt.ID)
		out.Columns.CreatedAt = append(out.Columns.CreatedAt, evt.CreatedAt.UTC().UnixMilli())
		out.Columns.EventType = append(out.Columns.EventType, string(evt.Type))
		out.Columns.Payload = append(out.Columns.Payload, json.RawMessage(evt.Payload))
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("export: init compressor: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(out); err != nil {
		_ = zw.Close()
		return fmt.Errorf("export: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: flush compressor: %w", err)
	}
	return nil
}

// Import reads a backup file and inserts the events whose ids are not
// already present. All-or-nothing for the delta: either every new event is
// inserted or the operation fails with zero additional rows.
func Import(ctx context.Context, store storage.EventStore, r io.Reader) (Result, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Result{}, &storage.SchemaValidationError{Reason: "not a zstd-compressed backup file"}
	}
	defer zr.Close()

	var raw rawFile
	if err := json.NewDecoder(zr).Decode(&raw); err != nil {
		return Result{}, &storage.SchemaValidationError{Reason: fmt.Sprintf("decode backup: %v", err)}
	}
	if raw.Format != "" && raw.Format != FormatName {
		return Result{}, &storage.SchemaValidationError{Reason: fmt.Sprintf("unsupported format %q", raw.Format)}
	}

	var missing []string
	for _, col := range []string{"_event_id", "_created_at", "event_type", "payload"} {
		if _, ok := raw.Columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Result{}, &storage.SchemaValidationError{Missing: missing}
	}

	var cols columns
	rawCols, err := json.Marshal(raw.Columns)
	if err != nil {
		return Result{}, &storage.SchemaValidationError{Reason: fmt.Sprintf("reread columns: %v", err)}
	}
	if err := json.Unmarshal(rawCols, &cols); err != nil {
		return Result{}, &storage.SchemaValidationError{Reason: fmt.Sprintf("decode columns: %v", err)}
	}

	n := len(cols.EventID)
	if len(cols.CreatedAt) != n || len(cols.EventType) != n || len(cols.Payload) != n {
		return Result{}, &storage.SchemaValidationError{Reason: "column lengths differ"}
	}

	existing, err := store.ExistingIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("import: %w", err)
	}

	var delta []event.Event
	skipped := 0
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := cols.EventID[i]
		if existing[id] || seen[id] {
			skipped++
			continue
		}
		seen[id] = true
		delta = append(delta, event.Event{
			ID:        id,
			CreatedAt: time.UnixMilli(cols.CreatedAt[i]).UTC(),
			Type:      event.Type(cols.EventType[i]),
			Payload:   []byte(cols.Payload[i]),
		})
	}

	if err := store.ImportEvents(ctx, delta); err != nil {
		return Result{}, fmt.Errorf("import: %w", err)
	}
	return Result{Imported: len(delta), Skipped: skipped}, nil
}
