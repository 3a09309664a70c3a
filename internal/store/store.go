// Package store defines the key-value storage port the repositories and the
// session manager are built on. Values are whole JSON blobs: every write
// replaces the full value under its key, which keeps collection updates
// atomic from the caller's point of view.
package store

import "context"

// KV abstracts durable and session-scoped key-value storage.
// GetItem reports ok=false when the key is absent; absence is not an error.
type KV interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
