package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageUnavailable indicates the backing store is not open. Fatal to
// the operation, surfaced to the caller, no retry.
var ErrStorageUnavailable = errors.New("storage is unavailable")

// MalformedEventError marks a single corrupt log record. Projections skip
// the record with a logged warning; it is never fatal to a query.
type MalformedEventError struct {
	EventID string
	Type    string
	Err     error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event %s (%s): %v", e.EventID, e.Type, e.Err)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// SchemaValidationError rejects an import file that does not expose the
// required columns. The import aborts with zero side effects.
type SchemaValidationError struct {
	Missing []string
	Reason  string
}

func (e *SchemaValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("backup schema invalid: missing columns %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("backup schema invalid: %s", e.Reason)
}

// QueryExecutionError wraps an engine failure verbatim. Operation-scoped and
// recoverable; no global state is corrupted.
type QueryExecutionError struct {
	Op  string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// IsMissingRelation reports whether an engine error means a table or view is
// absent because the store is fresh. Callers recode this to a benign empty
// result instead of a query failure.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such view") ||
		strings.Contains(msg, "not found")
}
