// Package store defines the path-addressable key/value store boundary that
// all game state persists through.
//
// Values are strings keyed by slash-separated paths. Writes are upserts with
// last-writer-wins semantics per path; there is no cross-path atomicity.
// Read-modify-write sequences must go through Update, which every backend
// executes serialized per store, so concurrent callers never interleave
// their reads and writes on the same path.
package store

import (
	"context"

	apperrors "github.com/louisbranch/assassin/internal/errors"
)

var (
	// ErrNotFound indicates a requested path has no value.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "path not found")
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = apperrors.New(apperrors.CodeStoreUnavailable, "store unavailable")
)

// Event is a single observed value change on a watched path.
// Err is set when the subscription itself failed; such events are
// delivered to the watcher rather than dropped.
type Event struct {
	Path  string
	Value string
	Err   error
}

// UpdateFunc computes the new value for a path given its current state.
// exists is false when the path has no value yet. Returning an error
// aborts the update without writing.
type UpdateFunc func(current string, exists bool) (string, error)

// Store is the persistence boundary for all game state.
type Store interface {
	// Get returns the value at path, or ErrNotFound.
	Get(ctx context.Context, path string) (string, error)

	// Set upserts the value at path.
	Set(ctx context.Context, path, value string) error

	// Update atomically transforms the value at path. The returned string
	// is the committed value. Updates on the same store never interleave.
	Update(ctx context.Context, path string, fn UpdateFunc) (string, error)

	// Delete removes the value at path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// Children returns the sorted set of direct child keys under path.
	// A path with no children yields an empty slice, never an error.
	Children(ctx context.Context, path string) ([]string, error)

	// Watch delivers the current value (when present) followed by every
	// subsequent write to path. The channel closes when ctx is cancelled.
	Watch(ctx context.Context, path string) (<-chan Event, error)

	// Close releases the backend.
	Close() error
}
