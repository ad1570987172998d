package kv

import "context"

// Slot is a single typed value stored under "namespace:name" in a KV.
type Slot[T any] struct {
	store KV
	key   string
}

// NewSlot binds a typed slot to one key of store.
func NewSlot[T any](store KV, namespace, name string) *Slot[T] {
	return &Slot[T]{store: store, key: namespace + ":" + name}
}

// Key returns the qualified key the slot occupies.
func (s *Slot[T]) Key() string { return s.key }

// Raw returns the stored entry without decoding it.
func (s *Slot[T]) Raw(ctx context.Context) (Entry, error) {
	return s.store.GetRaw(ctx, s.key)
}

// Store replaces the slot's value.
func (s *Slot[T]) Store(ctx context.Context, v T) error {
	return s.store.Set(ctx, s.key, v)
}
