// Package kv defines the durable key-value abstraction the ledger persists through.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) by Get and GetRaw when a key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Entry represents a raw KV entry with metadata.
type Entry struct {
	Key       string
	Value     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KV is the interface for a persistent key-value store.
// Keys are strings, values are JSON-serializable. Set overwrites any prior value.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
	GetRaw(ctx context.Context, key string) (Entry, error)
}

// IsNotFound reports whether err means the key was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Recoverer is implemented by backends that discard unreadable data on their
// own, such as a document store that moves a corrupt file aside. Recovered
// drains the errors describing what was discarded since the last call.
type Recoverer interface {
	Recovered() []error
}
