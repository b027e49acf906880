package notes

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced date has no record.
	ErrNotFound = errors.New("record not found")
	// ErrCollision is returned when a rename target date already has a record.
	ErrCollision = errors.New("target date already has a record")
)

// Store is an abstraction over the per-date note storage.
// Implementations must make every mutation observable as
// all-or-nothing by concurrent callers: a record is never visible
// under two dates at once, or re-keyed with stale fields.
type Store interface {
	// Get returns the record for date, or ErrNotFound.
	Get(ctx context.Context, date string) (Record, error)

	// Upsert inserts the record if absent (assigning CreatedAt), else
	// updates Content and LastUpdated. With preserveTitle an existing
	// CustomTitle is retained; without it the title is cleared.
	Upsert(ctx context.Context, date, content string, preserveTitle bool) (Record, error)

	// Delete removes the record for date if present and reports
	// whether anything was removed. A missing record is not an error.
	Delete(ctx context.Context, date string) (bool, error)

	// Rename re-keys the record at oldDate to newDate and applies
	// title (empty clears it), refreshing LastUpdated. It fails with
	// ErrNotFound when oldDate has no record and ErrCollision when
	// oldDate != newDate and newDate is occupied.
	Rename(ctx context.Context, oldDate, newDate, title string) (Record, error)

	// List returns summaries of all records ordered by date descending.
	List(ctx context.Context) ([]Summary, error)
}
