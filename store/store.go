// ABOUTME: Remote store operation set over the hosted key-value tree
// ABOUTME: Defines the Store interface the sync coordinator is built against
package store

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Snapshot is a full collection read: child id -> raw JSON record.
type Snapshot map[string][]byte

// Store is the thin operation set over the hosted key-value tree. Records
// live under path keys like "orders/<id>" and "payments/<id>".
type Store interface {
	// Get reads one record. Returns errs.ErrNotFound when the path is empty.
	Get(ctx context.Context, path string) ([]byte, error)

	// Set writes one record, replacing any existing value.
	Set(ctx context.Context, path string, value []byte) error

	// Remove deletes the record at path and everything beneath it.
	// Removing a nonexistent path is not an error.
	Remove(ctx context.Context, path string) error

	// List reads the full collection under prefix.
	List(ctx context.Context, prefix string) (Snapshot, error)

	// PushID generates a new time-ordered child id.
	PushID() string

	// Watch opens a live watch on the collection under path. fn receives the
	// current snapshot once on establish and again after every remote change.
	// The returned stop function cancels delivery.
	Watch(path string, fn func(Snapshot)) (stop func(), err error)
}

// Collection paths in the remote tree.
const (
	OrdersPath   = "orders"
	PaymentsPath = "payments"

	// ConnectivityPath is only written to log connection state; nothing in
	// the core reads it back.
	ConnectivityPath = "status/last-connected"
)

// NewPushID returns a lexicographically sortable, time-ordered id, the same
// role push ids play in hosted realtime databases.
func NewPushID() string {
	return ulid.Make().String()
}
