// Package jsonfile persists data in plain JSON documents on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/violations/internal/core/kv"
)

// FileName is the default document name inside the data directory.
const FileName = "violations.json"

// document is the root JSON structure stored on disk.
type document struct {
	Entries map[string]entry `json:"entries"`
}

type entry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// KVStore implements kv.KV on a single JSON document. Every operation re-reads
// the file so concurrent processes see each other's writes; writes are atomic
// (temp file + rename).
type KVStore struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time

	mu sync.RWMutex

	recMu     sync.Mutex
	recovered []error
}

var (
	_ kv.KV        = (*KVStore)(nil)
	_ kv.Recoverer = (*KVStore)(nil)
)

// Recovered drains the documents moved aside because they could not be decoded.
func (s *KVStore) Recovered() []error {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	out := s.recovered
	s.recovered = nil
	return out
}

// NewKVStore creates a JSON file KV store at the given path.
func NewKVStore(path string, logger zerolog.Logger) *KVStore {
	return &KVStore{path: path, logger: logger, now: time.Now}
}

// Path returns the document path.
func (s *KVStore) Path() string {
	return s.path
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	e, err := s.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	return s.SetRaw(ctx, key, data)
}

// SetRaw stores already-encoded bytes. Invalid JSON is stored as a JSON string
// so the document itself stays readable.
func (s *KVStore) SetRaw(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if !json.Valid(data) {
		data, _ = json.Marshal(string(data))
	}

	now := s.now()
	e, ok := doc.Entries[key]
	if !ok {
		e.CreatedAt = now
	}
	e.Value = data
	e.UpdatedAt = now
	doc.Entries[key] = e

	if err := s.save(doc); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Entries[key]; !ok {
		return nil
	}

	delete(doc.Entries, key)
	if err := s.save(doc); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := doc.Entries[key]
	return ok, nil
}

func (s *KVStore) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(doc.Entries))
	for k := range doc.Entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *KVStore) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return kv.Entry{}, err
	}

	e, ok := doc.Entries[key]
	if !ok {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return kv.Entry{Key: key, Value: e.Value, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}, nil
}

// load reads the document from disk. A missing or empty file is an empty
// document. An unreadable document is renamed aside and treated as empty.
func (s *KVStore) load() (document, error) {
	doc := document{Entries: map[string]entry{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%d", s.path, s.now().UnixNano())
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return doc, fmt.Errorf("decode %s: %w", s.path, err)
		}
		s.logger.Warn().Err(err).Str("backup", backup).Msg("json store unreadable, starting empty")

		s.recMu.Lock()
		s.recovered = append(s.recovered, fmt.Errorf("%s could not be decoded (%v); moved to %s", filepath.Base(s.path), err, backup))
		s.recMu.Unlock()
		return document{Entries: map[string]entry{}}, nil
	}

	if doc.Entries == nil {
		doc.Entries = map[string]entry{}
	}
	return doc, nil
}

// save writes the document to disk atomically.
func (s *KVStore) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
