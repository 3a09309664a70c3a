// Package repo implements the test and result repositories over the
// key-value storage port. Collections are stored as single JSON blobs, read
// fully, mutated in memory, and written back fully.
package repo

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RemoteSink mirrors records to an optional external store. Every call is
// best-effort: a sink failure never fails the local operation.
type RemoteSink interface {
	SaveRecord(ctx context.Context, collection, id string, record any) error
	DeleteRecord(ctx context.Context, collection, id string) error
	DeleteSubmissionsForTest(ctx context.Context, testID string) error
}

// Hooks are the capabilities the hosting environment may install. Every
// field is optional; a nil hook is normal operation, not degraded operation.
type Hooks struct {
	// Sink mirrors saves and deletes to a remote store.
	Sink RemoteSink
	// Render is invoked after a successful test save or delete.
	Render func()
	// Confirm must approve destructive actions. Nil approves everything.
	Confirm func(prompt string) bool
	// Notify surfaces user-facing outcome messages.
	Notify func(message string)
}

func (h Hooks) confirm(prompt string) bool {
	if h.Confirm == nil {
		return true
	}
	return h.Confirm(prompt)
}

func (h Hooks) notify(message string) {
	if h.Notify != nil {
		h.Notify(message)
	}
}

func (h Hooks) render() {
	if h.Render != nil {
		h.Render()
	}
}

// newID generates a collection-unique identifier: base36 timestamp plus a
// random base36 suffix. Collisions are treated as negligible, not impossible.
func newID(now time.Time, rnd *rand.Rand) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + strconv.FormatInt(rnd.Int63(), 36)
}

// decodeList parses a stored collection blob. Absent or malformed blobs are
// an empty collection, never an error.
func decodeList[T any](raw string, ok bool) []T {
	if !ok || raw == "" {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func noopLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
