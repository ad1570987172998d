package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/violations/pkg/kv"
)

// Memory is a process-local KV. Values are held as encoded JSON so callers see
// the same copy semantics as the durable backends.
type Memory struct {
	data *kv.Store[string, Entry]
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: kv.New[string, Entry]()}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	entry, err := m.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now()
	m.data.Upsert(key, func(old Entry, exists bool) Entry {
		created := now
		if exists {
			created = old.CreatedAt
		}
		return Entry{Key: key, Value: data, CreatedAt: created, UpdatedAt: now}
	})
	return nil
}

// SetRaw stores already-encoded bytes without validation. It exists so tests
// can plant malformed values.
func (m *Memory) SetRaw(key string, raw []byte) {
	now := time.Now()
	m.data.Set(key, Entry{Key: key, Value: raw, CreatedAt: now, UpdatedAt: now})
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	_, ok := m.data.Get(key)
	return ok, nil
}

func (m *Memory) ListKeys(_ context.Context) ([]string, error) {
	return m.data.Keys(), nil
}

func (m *Memory) GetRaw(_ context.Context, key string) (Entry, error) {
	entry, ok := m.data.Get(key)
	if !ok {
		return Entry{}, fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}
	return entry, nil
}
